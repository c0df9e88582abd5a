package schema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/strogholod/catalog/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/sr"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (int, error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

type MockRegistryClient struct {
	mock.Mock
}

func (c *MockRegistryClient) CreateSchema(
	ctx context.Context, subject string, s sr.Schema,
) (sr.SubjectSchema, error) {
	args := c.Called(ctx, subject, s)
	return args.Get(0).(sr.SubjectSchema), args.Error(1)
}

func samplePriceChange() schema.PriceChangeV1 {
	return schema.PriceChangeV1{
		ProductID: 42,
		Name:      "Витрина А",
		Category:  "Vitriny",
		OldPrice:  "100",
		NewPrice:  "150",
		ChangedAt: "2025-05-20 14:30:00",
	}
}

func TestPriceChangeV1Avro(t *testing.T) {
	var s avro.Schema
	require.NotPanics(t, func() {
		s = schema.PriceChangeV1Avro()
	})

	in := samplePriceChange()
	data, err := avro.Marshal(s, in)
	require.NoError(t, err)

	var out schema.PriceChangeV1
	require.NoError(t, avro.Unmarshal(s, data, &out))
	assert.Equal(t, in, out)
}

func TestSerdePriceChangeV1(t *testing.T) {
	const subject = "strogholod-price-changes-value"

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdePriceChangeV1(t.Context())
		require.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdePriceChangeV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("IdentifierFailure", func(t *testing.T) {
		si := new(MockSchemaIdentifier)
		si.On("DetermineID", t.Context(), subject, schema.PriceChangeSchemaTextV1).
			Return(0, errors.New("registry unavailable"))

		_, err := schema.NewSerdePriceChangeV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(si),
		)
		require.Error(t, err)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		si := new(MockSchemaIdentifier)
		si.On("DetermineID", t.Context(), subject, schema.PriceChangeSchemaTextV1).
			Return(3, nil)

		serde, err := schema.NewSerdePriceChangeV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(si),
		)
		require.NoError(t, err)

		in := samplePriceChange()
		data, err := serde.Encode(in)
		require.NoError(t, err)
		require.Greater(t, len(data), 5)
		assert.Equal(t, byte(0), data[0])
		assert.Equal(t, []byte{0, 0, 0, 3}, data[1:5])

		var out schema.PriceChangeV1
		require.NoError(t, serde.Decode(data, &out))
		assert.Equal(t, in, out)
	})
}

func TestSchemaCreater(t *testing.T) {
	const subject = "prices-value"
	want := sr.Schema{Schema: schema.PriceChangeSchemaTextV1, Type: sr.TypeAvro}

	t.Run("Registered", func(t *testing.T) {
		client := new(MockRegistryClient)
		client.On("CreateSchema", t.Context(), subject, want).
			Return(sr.SubjectSchema{Subject: subject, ID: 7}, nil)

		id, err := schema.NewSchemaCreater(client).DetermineID(
			t.Context(), subject, schema.PriceChangeSchemaTextV1,
		)
		require.NoError(t, err)
		assert.Equal(t, 7, id)
	})

	t.Run("Failure", func(t *testing.T) {
		client := new(MockRegistryClient)
		client.On("CreateSchema", t.Context(), subject, want).
			Return(sr.SubjectSchema{}, errors.New("boom"))

		_, err := schema.NewSchemaCreater(client).DetermineID(
			t.Context(), subject, schema.PriceChangeSchemaTextV1,
		)
		require.Error(t, err)
	})
}

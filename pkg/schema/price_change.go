package schema

import "github.com/hamba/avro/v2"

const PriceChangeSchemaTextV1 = `{
	"type": "record",
	"namespace": "strogholod",
	"name": "price_change",
	"fields": [
		{"name": "product_id", "type": "long"},
		{"name": "name", "type": "string"},
		{"name": "category", "type": "string"},
		{"name": "old_price", "type": "string"},
		{"name": "new_price", "type": "string"},
		{"name": "changed_at", "type": "string"}
	]
}`

type PriceChangeV1 struct {
	ProductID int64  `avro:"product_id"`
	Name      string `avro:"name"`
	Category  string `avro:"category"`
	OldPrice  string `avro:"old_price"`
	NewPrice  string `avro:"new_price"`
	ChangedAt string `avro:"changed_at"`
}

func PriceChangeV1Avro() avro.Schema {
	return avro.MustParse(PriceChangeSchemaTextV1)
}

package domain

// RecentlyChangedFilter is the catalog filter that lists every product
// ordered by the last price change.
const RecentlyChangedFilter = "Изменена цена"

type Category struct {
	Label string
	Code  string
}

// categories is ordered; the first entry is the default category.
var categories = [...]Category{
	{"Бонеты", "Bonety"},
	{"Лари", "Lari"},
	{"Витрины", "Vitriny"},
	{"Горки встроенный холод", "Gorki_vstroennyj"},
	{"Горки выносной холод", "Gorki_vynosnoj"},
	{"Шкафы двухдверные", "Shkafy_dvuhdvernye"},
	{"Шкафы однодверные", "Shkafy_odnodvernye"},
	{"Кассы", "Kassy"},
	{"Кухонное оборудование", "Kuhonnoe_oborudovanie"},
	{"Стеллажи", "Stellazhi"},
}

func DefaultCategory() Category {
	return categories[0]
}

func Categories() []Category {
	return append([]Category(nil), categories[:]...)
}

// CodeFor returns the code of label or "" if the label is unknown.
func CodeFor(label string) string {
	for _, c := range categories {
		if c.Label == label {
			return c.Code
		}
	}
	return ""
}

// CodeOrDefault returns the code of label, falling back to the default category.
func CodeOrDefault(label string) string {
	if code := CodeFor(label); code != "" {
		return code
	}
	return DefaultCategory().Code
}

// LabelFor returns the label of code, falling back to the default label.
func LabelFor(code string) string {
	for _, c := range categories {
		if c.Code == code {
			return c.Label
		}
	}
	return DefaultCategory().Label
}

func IsCategoryCode(code string) bool {
	for _, c := range categories {
		if c.Code == code {
			return true
		}
	}
	return false
}

func Labels() []string {
	labels := make([]string, len(categories))
	for i, c := range categories {
		labels[i] = c.Label
	}
	return labels
}

// FilterLabels lists the catalog filters in menu order.
func FilterLabels() []string {
	return append([]string{RecentlyChangedFilter}, Labels()...)
}

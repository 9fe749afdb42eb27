package models

// CartLine - одна позиция корзины: товар и его количество.
// В корзине может быть не более одной позиции на product_id.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	ImageRef  string  `json:"image_ref"`
	Category  string  `json:"category"`
	Quantity  int     `json:"quantity"`
}

func (l CartLine) LineTotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Subtotal считает сумму по списку позиций. Производные значения
// нигде не хранятся и всегда пересчитываются из текущих позиций.
func Subtotal(lines []CartLine) float64 {
	var total float64

	for _, line := range lines {
		total += line.LineTotal()
	}

	return total
}

// ItemCount считает суммарное количество товаров по списку позиций.
func ItemCount(lines []CartLine) int {
	var count int

	for _, line := range lines {
		count += line.Quantity
	}

	return count
}

// Product - карточка товара витрины, из которой создается позиция корзины.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageRef string  `json:"image_ref"`
	Category string  `json:"category"`
}

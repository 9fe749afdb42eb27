// Package catalogGen генерирует демонстрационный каталог товаров
// витрины. Для создания фейковых данных используется библиотека
// `gofakeit`; категории соответствуют реальным разделам магазина.
package catalogGen

import (
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/brianvoe/gofakeit/v7"
)

// Предопределенные срезы строк для выбора случайных значений.
// Это делает сгенерированные данные более похожими на настоящие.
var (
	categories = []string{"music", "apparel", "books", "accessories"}
	imageHosts = []string{"cdn.claudygod.com", "img.claudygod.com"}
)

// Products создает каталог из count случайных товаров со стабильными
// в рамках запуска идентификаторами.
func Products(count int) []models.Product {
	products := make([]models.Product, count)

	for i := range products {
		products[i] = generateProduct()
	}

	return products
}

func generateProduct() models.Product {
	category := gofakeit.RandomString(categories)

	return models.Product{
		ID:       gofakeit.UUID(),
		Name:     gofakeit.ProductName(),
		Price:    gofakeit.Price(10, 100),
		ImageRef: "https://" + gofakeit.RandomString(imageHosts) + "/" + category + "/" + gofakeit.LetterN(8) + ".jpg",
		Category: category,
	}
}

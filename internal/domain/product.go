package domain

type Product struct {
	ID          string  `json:"id" bson:"_id"`
	Name        string  `json:"name" bson:"name"`
	Price       float64 `json:"price" bson:"price"`
	Image       string  `json:"image" bson:"image"`
	Description string  `json:"description" bson:"description"`
	Category    string  `json:"category" bson:"category"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryAll selects every product when used as a category filter.
const CategoryAll = "all"

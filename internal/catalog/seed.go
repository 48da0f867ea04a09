package catalog

import "github.com/fjod/storefront/internal/domain"

// DefaultProducts is the stock catalog every backend starts with.
func DefaultProducts() []domain.Product {
	out := make([]domain.Product, len(defaultProducts))
	copy(out, defaultProducts)
	return out
}

var defaultProducts = []domain.Product{
	{
		ID:          "1",
		Name:        "Wireless Noise Cancelling Headphones",
		Price:       299.99,
		Image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?q=80&w=2670&auto=format&fit=crop",
		Description: "Premium wireless headphones with active noise cancelling technology, 30-hour battery life, and crystal-clear sound quality perfect for music lovers and frequent travelers.",
		Category:    "electronics",
	},
	{
		ID:          "2",
		Name:        "Minimalist Smart Watch",
		Price:       199.99,
		Image:       "https://images.unsplash.com/photo-1523275335684-37898b6baf30?q=80&w=2699&auto=format&fit=crop",
		Description: "A sleek, minimalist smart watch with health tracking features, notifications, and a beautiful OLED display. Water-resistant and perfect for everyday use.",
		Category:    "electronics",
	},
	{
		ID:          "3",
		Name:        "Modern Desk Lamp",
		Price:       89.99,
		Image:       "https://images.unsplash.com/photo-1507473885765-e6ed057f782c?q=80&w=2670&auto=format&fit=crop",
		Description: "Adjustable LED desk lamp with wireless charging pad and multiple brightness levels. Perfect for your home office or bedside table.",
		Category:    "home",
	},
	{
		ID:          "4",
		Name:        "Premium Cotton T-Shirt",
		Price:       29.99,
		Image:       "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?q=80&w=2680&auto=format&fit=crop",
		Description: "Ultra-soft premium cotton t-shirt with a modern fit. Available in multiple colors and sizes.",
		Category:    "clothing",
	},
	{
		ID:          "5",
		Name:        "Professional Camera Kit",
		Price:       1299.99,
		Image:       "https://images.unsplash.com/photo-1516035069371-29a1b244cc32?q=80&w=2764&auto=format&fit=crop",
		Description: "Complete professional camera kit with a high-resolution sensor, multiple lenses, and accessories for both photography and videography.",
		Category:    "electronics",
	},
	{
		ID:          "6",
		Name:        "Minimalist Ceramic Vase",
		Price:       49.99,
		Image:       "https://images.unsplash.com/photo-1602143407151-7111542de6e8?q=80&w=2574&auto=format&fit=crop",
		Description: "Handcrafted ceramic vase with a minimalist design that complements any home decor. Available in white, black, and terracotta.",
		Category:    "home",
	},
	{
		ID:          "7",
		Name:        "Natural Face Serum",
		Price:       59.99,
		Image:       "https://images.unsplash.com/photo-1573575155376-b5010099301b?q=80&w=2570&auto=format&fit=crop",
		Description: "Organic face serum with natural ingredients to hydrate, brighten, and nourish your skin. Suitable for all skin types.",
		Category:    "beauty",
	},
	{
		ID:          "8",
		Name:        "Leather Laptop Sleeve",
		Price:       79.99,
		Image:       "https://images.unsplash.com/photo-1583394838336-acd977736f90?q=80&w=2568&auto=format&fit=crop",
		Description: "Premium leather laptop sleeve with soft interior lining to protect your device. Fits laptops up to 15 inches.",
		Category:    "electronics",
	},
	{
		ID:          "9",
		Name:        "Bestselling Novel Collection",
		Price:       49.99,
		Image:       "https://images.unsplash.com/photo-1544947950-fa07a98d237f?q=80&w=2679&auto=format&fit=crop",
		Description: "A collection of five bestselling novels from acclaimed authors. Perfect for book lovers or as a thoughtful gift.",
		Category:    "books",
	},
	{
		ID:          "10",
		Name:        "Minimalist Wall Clock",
		Price:       39.99,
		Image:       "https://images.unsplash.com/photo-1563861826100-9cb78f20f3a6?q=80&w=2670&auto=format&fit=crop",
		Description: "Simple, elegant wall clock with a silent movement mechanism. Available in multiple colors to match any interior.",
		Category:    "home",
	},
	{
		ID:          "11",
		Name:        "Wireless Charging Pad",
		Price:       29.99,
		Image:       "https://images.unsplash.com/photo-1586953208448-b95a79798f07?q=80&w=2670&auto=format&fit=crop",
		Description: "Fast wireless charging pad compatible with all Qi-enabled devices. Sleek design with LED indicator.",
		Category:    "electronics",
	},
	{
		ID:          "12",
		Name:        "Premium Coffee Maker",
		Price:       149.99,
		Image:       "https://images.unsplash.com/photo-1520970519539-8c9eaad9d5fa?q=80&w=2574&auto=format&fit=crop",
		Description: "High-quality coffee maker with programmable settings, built-in grinder, and thermal carafe to keep your coffee hot for hours.",
		Category:    "home",
	},
}

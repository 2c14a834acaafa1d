package seed

import "github.com/shopspring/decimal"

type categorySeed struct {
	Name        string
	Description string
}

type productSeed struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
}

var defaultCategories = []categorySeed{
	{"Electronics", "Electronic devices and gadgets"},
	{"Clothing", "Fashion and apparel"},
	{"Books", "Books and educational materials"},
	{"Home & Garden", "Home improvement and garden supplies"},
}

var defaultProducts = []productSeed{
	{
		Name:        "Smartphone",
		Description: "Latest model smartphone with advanced features and high-resolution camera",
		Price:       decimal.RequireFromString("699.99"),
		Stock:       50,
		Category:    "Electronics",
		ImageURL:    "https://images.unsplash.com/photo-1592750475338-74b7b21085ab?w=500&h=500&fit=crop&q=80",
	},
	{
		Name:        "Laptop",
		Description: "High-performance laptop for work and gaming with fast processor",
		Price:       decimal.RequireFromString("1299.99"),
		Stock:       30,
		Category:    "Electronics",
		ImageURL:    "https://images.unsplash.com/photo-1496181133206-80ce9b88a853?w=500&h=500&fit=crop&q=80",
	},
	{
		Name:        "Wireless Headphones",
		Description: "Premium noise-cancelling wireless headphones with long battery life",
		Price:       decimal.RequireFromString("299.99"),
		Stock:       75,
		Category:    "Electronics",
		ImageURL:    "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500&h=500&fit=crop&q=80",
	},
	{
		Name:        "T-Shirt",
		Description: "Comfortable cotton t-shirt available in multiple colors",
		Price:       decimal.RequireFromString("29.99"),
		Stock:       100,
		Category:    "Clothing",
		ImageURL:    "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=500&h=500&fit=crop&q=80",
	},
	{
		Name:        "Jeans",
		Description: "Classic blue denim jeans with perfect fit",
		Price:       decimal.RequireFromString("79.99"),
		Stock:       60,
		Category:    "Clothing",
		ImageURL:    "https://images.unsplash.com/photo-1542272604-787c3835535d?w=500&h=500&fit=crop&q=80",
	},
	{
		Name:        "Programming Book",
		Description: "Learn modern web development with practical examples",
		Price:       decimal.RequireFromString("49.99"),
		Stock:       25,
		Category:    "Books",
		ImageURL:    "https://images.unsplash.com/photo-1544716278-ca5e3f4abd8c?w=500&h=500&fit=crop&q=80",
	},
	{
		Name:        "Garden Tools Set",
		Description: "Complete set of essential garden tools for your backyard",
		Price:       decimal.RequireFromString("89.99"),
		Stock:       40,
		Category:    "Home & Garden",
		ImageURL:    "https://images.unsplash.com/photo-1416879595882-3373a0480b5b?w=500&h=500&fit=crop&q=80",
	},
	{
		Name:        "Coffee Maker",
		Description: "Automatic coffee maker with programmable timer",
		Price:       decimal.RequireFromString("159.99"),
		Stock:       35,
		Category:    "Home & Garden",
		ImageURL:    "https://images.unsplash.com/photo-1517668808822-9ebb02f2a0e6?w=500&h=500&fit=crop&q=80",
	},
}

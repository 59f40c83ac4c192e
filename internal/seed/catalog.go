package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Archer110/nexus/internal/domain"
)

type template struct {
	name        string
	brand       string
	price       float64
	description string
	image       string
}

type category struct {
	name      string
	templates []template
	specs     func(r *rand.Rand) map[string]any
}

var suffixes = []string{"Pro", "Max", "Mini", "Bundle", "Refurbished", "Limited Edition", "V2", "Pack", "Travel Size"}

var colors = []string{"Midnight Black", "Clean White", "Cyber Silver", "Neon Blue", "Crimson Red", "Gold", "Natural"}

var categories = []category{
	{
		name: "Tech",
		templates: []template{
			{"Nova Phone", "Nexa", 799, "Flagship phone with an all-day battery and a 120Hz display.", "https://cdn.dummyjson.com/products/images/smartphones/1.png"},
			{"Aero Laptop 14", "Lumen", 1299, "Thin and light laptop for work on the move.", "https://cdn.dummyjson.com/products/images/laptops/1.png"},
			{"Pulse Watch", "Tempo", 249, "Fitness watch with heart rate and sleep tracking.", "https://cdn.dummyjson.com/products/images/mens-watches/1.png"},
			{"Slate Tablet", "Nexa", 499, "10 inch tablet with stylus support.", "https://cdn.dummyjson.com/products/images/tablets/1.png"},
		},
		specs: func(r *rand.Rand) map[string]any {
			return map[string]any{
				"processor":    pick(r, "Snapdragon 8 Gen 3", "M3", "Intel i9", "A17 Pro"),
				"ram":          pick(r, "8GB", "16GB", "32GB"),
				"storage":      pick(r, "256GB", "512GB", "1TB"),
				"warranty":     "2 Year Manufacturer",
				"connectivity": []string{"Bluetooth 5.3", "WiFi 6E", "NFC"},
			}
		},
	},
	{
		name: "Fashion",
		templates: []template{
			{"Classic Denim Jacket", "Harbor", 89, "Stonewashed denim jacket with a relaxed fit.", "https://cdn.dummyjson.com/products/images/mens-shirts/1.png"},
			{"Summer Linen Dress", "Maris", 65, "Breathable linen dress for warm days.", "https://cdn.dummyjson.com/products/images/womens-dresses/1.png"},
			{"Trail Runner Shoes", "Stride", 120, "Lightweight running shoes with a grippy sole.", "https://cdn.dummyjson.com/products/images/mens-shoes/1.png"},
			{"Leather Tote", "Maris", 150, "Full grain leather tote with an inner zip pocket.", "https://cdn.dummyjson.com/products/images/womens-bags/1.png"},
		},
		specs: func(r *rand.Rand) map[string]any {
			return map[string]any{
				"material":          pick(r, "Cotton", "Polyester", "Leather", "Silk", "Denim"),
				"gender":            pick(r, "Unisex", "Men", "Women"),
				"care_instructions": pick(r, "Machine Wash", "Dry Clean Only", "Hand Wash"),
				"season":            pick(r, "SS26", "FW25", "All-Season"),
				"sizes_available":   []string{"XS", "S", "M", "L", "XL"},
			}
		},
	},
	{
		name: "Beauty",
		templates: []template{
			{"Hydra Serum", "Glow Lab", 32, "Hyaluronic serum for daily hydration.", "https://cdn.dummyjson.com/products/images/skin-care/1.png"},
			{"Velvet Lipstick", "Rouge", 18, "Long wearing matte lipstick.", "https://cdn.dummyjson.com/products/images/beauty/1.png"},
			{"Cedar Eau de Parfum", "Atelier", 95, "Woody fragrance with notes of cedar and amber.", "https://cdn.dummyjson.com/products/images/fragrances/1.png"},
		},
		specs: func(r *rand.Rand) map[string]any {
			return map[string]any{
				"ingredients":  []string{"Aqua", "Glycerin", "Vitamin C", "Hyaluronic Acid", "Retinol"},
				"skin_type":    pick(r, "All", "Oily", "Dry", "Sensitive"),
				"volume":       fmt.Sprintf("%dml", between(r, 30, 250)),
				"cruelty_free": r.Intn(2) == 0,
				"organic":      r.Intn(2) == 0,
			}
		},
	},
	{
		name: "Home",
		templates: []template{
			{"Oak Side Table", "Hearth", 140, "Solid oak side table with a lower shelf.", "https://cdn.dummyjson.com/products/images/furniture/1.png"},
			{"Arc Floor Lamp", "Lumen", 85, "Arched floor lamp with a dimmable bulb.", "https://cdn.dummyjson.com/products/images/home-decoration/1.png"},
			{"Chef Knife Set", "Hearth", 110, "Five piece stainless steel knife set.", "https://cdn.dummyjson.com/products/images/kitchen-accessories/1.png"},
		},
		specs: func(r *rand.Rand) map[string]any {
			return map[string]any{
				"material_primary":  pick(r, "Oak Wood", "Stainless Steel", "Ceramic", "Glass"),
				"assembly_required": r.Intn(2) == 0,
				"dimensions_cm":     fmt.Sprintf("%dx%dx%d", between(r, 10, 200), between(r, 10, 200), between(r, 10, 100)),
				"weight_kg":         domain.RoundMoney(0.5 + r.Float64()*49.5),
			}
		},
	},
	{
		name: "Grocery",
		templates: []template{
			{"Cold Brew Coffee", "Morning Co", 12, "Smooth cold brew concentrate.", "https://cdn.dummyjson.com/products/images/groceries/1.png"},
			{"Extra Virgin Olive Oil", "Campo", 16, "First cold pressed olive oil.", "https://cdn.dummyjson.com/products/images/groceries/2.png"},
			{"Trail Mix", "Summit", 7, "Roasted nuts, seeds and dried fruit.", "https://cdn.dummyjson.com/products/images/groceries/3.png"},
		},
		specs: func(r *rand.Rand) map[string]any {
			allergens := []string{"Nuts", "Dairy", "Soy", "Gluten", "None"}
			r.Shuffle(len(allergens), func(i, j int) { allergens[i], allergens[j] = allergens[j], allergens[i] })
			return map[string]any{
				"calories":    between(r, 50, 800),
				"expiry_date": time.Now().AddDate(0, 0, between(r, 7, 365)).Format("2006-01-02"),
				"allergens":   allergens[:r.Intn(3)],
				"dietary":     pick(r, "Vegan", "Vegetarian", "Keto", "Standard"),
				"origin":      pick(r, "USA", "Italy", "Mexico", "Local Farm"),
			}
		},
	},
}

// Categories lists the category names the generator produces.
func Categories() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.name
	}
	return names
}

// Product builds a random catalog product: a template from a random category
// with a name variant, a price within 30% of the template and
// category specific specs.
func (s *Seeder) Product() *domain.Product {
	cat := categories[s.rnd.Intn(len(categories))]
	tpl := cat.templates[s.rnd.Intn(len(cat.templates))]

	name := tpl.name
	if s.rnd.Float64() > 0.3 {
		name += " " + pick(s.rnd, suffixes...)
	}

	specs := cat.specs(s.rnd)
	specs["brand"] = tpl.brand
	specs["sku"] = fmt.Sprintf("SKU-%d", between(s.rnd, 10000, 99999))
	specs["color"] = pick(s.rnd, colors...)
	specs["shipping_weight_g"] = between(s.rnd, 50, 5000)
	specs["eco_friendly_packaging"] = s.rnd.Intn(2) == 0
	specs["release_year"] = between(s.rnd, 2023, 2026)

	return &domain.Product{
		Name:        name,
		Description: tpl.description,
		Price:       domain.RoundMoney(tpl.price * (0.7 + s.rnd.Float64()*0.6)),
		Category:    cat.name,
		ImageURL:    tpl.image,
		Specs:       specs,
		CreatedAt:   time.Now().UTC().AddDate(0, 0, -s.rnd.Intn(366)),
	}
}

// Stock is zero for roughly one product in ten.
func (s *Seeder) Stock() int {
	if s.rnd.Float64() < 0.1 {
		return 0
	}
	return between(s.rnd, 1, 300)
}

func pick(r *rand.Rand, values ...string) string {
	return values[r.Intn(len(values))]
}

// between returns a value in [lo, hi].
func between(r *rand.Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

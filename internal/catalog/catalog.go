// Package catalog holds the static option lists the filter form offers.
package catalog

// Option is one selectable entry. Value is what goes over the wire, Label is
// what the user sees.
type Option struct {
	Value string
	Label string
}

var localities = []string{
	"Banashankari", "Bannerghatta Road", "Basavanagudi", "Bellandur", "Brigade Road",
	"Brookefield", "Btm", "Church Street", "Electronic City", "Frazer Town", "Hsr",
	"Indiranagar", "Jayanagar", "Jp Nagar", "Kalyan Nagar", "Kammanahalli",
	"Koramangala 4Th Block", "Koramangala 5Th Block", "Koramangala 6Th Block",
	"Koramangala 7Th Block", "Lavelle Road", "Malleshwaram", "Marathahalli", "Mg Road",
	"New Bel Road", "Old Airport Road", "Rajajinagar", "Residency Road", "Sarjapur Road",
	"Whitefield",
}

// rawCuisines is the cuisine list as exported from the restaurant dataset.
var rawCuisines = []string{
	"Afghan", "Afghani", "African", "American", "Andhra", "Arabian", "Asian", "Assamese",
	"Australian", "Awadhi", "BBQ", "Bakery", "Bar Food", "Belgian", "Bengali", "Beverages",
	"Bihari", "Biryani", "Bohri", "British", "Bubble Tea", "Burger", "Burmese", "Cafe",
	"Cantonese", "Charcoal Chicken", "Chettinad", "Chinese", "Coffee", "Continental",
	"Desserts", "Drinks Only", "European", "Fast Food", "Finger Food", "French", "German",
	"Goan", "Greek", "Grill", "Gujarati", "Healthy Food", "Hot dogs", "Hyderabadi",
	"Ice Cream", "Indian", "Indonesian", "Iranian", "Italian", "Japanese", "Jewish",
	"Juices", "Kashmiri", "Kebab", "Kerala", "Konkan", "Korean", "Lebanese", "Lucknowi",
	"Maharashtrian", "Malaysian", "Malwani", "Mangalorean", "Mediterranean", "Mexican",
	"Middle Eastern", "Mithai", "Modern Indian", "Momos", "Mongolian", "Mughlai", "Naga",
	"Nepalese", "North Eastern", "North Indian", "Oriya", "Paan", "Pan Asian", "Parsi",
	"Pizza", "Portuguese", "Rajasthani", "Raw Meats", "Roast Chicken", "Rolls", "Russian",
	"Salad", "Sandwich", "Seafood", "Sindhi", "Singaporean", "South American",
	"South Indian", "Spanish", "Sri Lankan", "Steak", "Street Food", "Sushi", "Tamil", "Tea",
	"Tex-Mex", "Thai", "Tibetan", "Turkish", "Unknown", "Vegan", "Vietnamese", "Wraps",
}

// excludedCuisines never reach the picker; the dataset uses them as catch-alls.
var excludedCuisines = map[string]bool{
	"Cafe":    true,
	"Unknown": true,
}

// Price range wire values accepted by the backend.
const (
	PriceBudget   = "budget"
	PriceMidRange = "mid-range"
	PricePremium  = "premium"
)

var priceRanges = []Option{
	{Value: PriceBudget, Label: "Budget (₹ < 500)"},
	{Value: PriceMidRange, Label: "Mid-range (₹500 - ₹1500)"},
	{Value: PricePremium, Label: "Premium (₹ > 1500)"},
}

// Localities returns the locality catalog in display order.
func Localities() []Option {
	return plainOptions(localities)
}

// Cuisines returns the cuisine catalog with the catch-all entries removed.
func Cuisines() []Option {
	out := make([]string, 0, len(rawCuisines))
	for _, c := range rawCuisines {
		if excludedCuisines[c] {
			continue
		}
		out = append(out, c)
	}
	return plainOptions(out)
}

// PriceRanges returns the fixed price buckets.
func PriceRanges() []Option {
	return append([]Option(nil), priceRanges...)
}

// PriceLabel maps a price wire value to its display label. Unknown values are
// returned unchanged.
func PriceLabel(value string) string {
	for _, p := range priceRanges {
		if p.Value == value {
			return p.Label
		}
	}
	return value
}

// ValidPriceRange reports whether value is one of the accepted buckets.
func ValidPriceRange(value string) bool {
	for _, p := range priceRanges {
		if p.Value == value {
			return true
		}
	}
	return false
}

func plainOptions(values []string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Value: v, Label: v})
	}
	return out
}

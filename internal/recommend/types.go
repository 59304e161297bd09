package recommend

// Request is the body of POST /api/recommend. Cuisine is encoded as null when
// no cuisine was picked.
type Request struct {
	City       string   `json:"city"`
	PriceRange string   `json:"price_range"`
	Cuisine    []string `json:"cuisine"`
	MinRating  float64  `json:"min_rating"`
}

// Recommendation is one restaurant card.
type Recommendation struct {
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	Votes       int     `json:"votes,omitempty"`
	Cuisines    string  `json:"cuisines"`
	AverageCost float64 `json:"average_cost"`
	Address     string  `json:"address"`
	Reasoning   string  `json:"reasoning"`
}

// Response is the success body of POST /api/recommend.
type Response struct {
	Status          string           `json:"status,omitempty"`
	Count           int              `json:"count"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         string           `json:"ai_reasoning_summary,omitempty"`
	Message         string           `json:"message,omitempty"`
}

// Empty reports whether the backend matched nothing.
func (r Response) Empty() bool { return r.Count == 0 }

// Feedback is the body of POST /api/feedback.
type Feedback struct {
	RestaurantName string `json:"restaurant_name"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

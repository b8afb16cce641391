package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ProductData struct {
	ProductID       int64  `json:"product_id"`
	Name            string `json:"name"`
	Origin          string `json:"origin"`
	FarmerID        string `json:"farmer_id"`
	HarvestDate     string `json:"harvest_date"`
	Quantity        int64  `json:"quantity"`
	CurrentLocation string `json:"current_location"`
	Status          string `json:"status"`
	LastUpdated     string `json:"last_updated"`
}

type RegisterProductRequest struct {
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	HarvestDate string `json:"harvest_date"`
	Quantity    int64  `json:"quantity"`
}

type RegisterProductResponse struct {
	Status string      `json:"status"`
	Data   ProductData `json:"data"`
}

type UpdateStatusRequest struct {
	Status   string `json:"status"`
	Location string `json:"location"`
	Notes    string `json:"notes,omitempty"`
}

type UpdateStatusResponse struct {
	Status string      `json:"status"`
	Data   ProductData `json:"data"`
}

type GetProductResponse struct {
	Status string      `json:"status"`
	Data   ProductData `json:"data"`
}

type JourneyEntryData struct {
	Seq       int    `json:"seq"`
	HandlerID string `json:"handler_id"`
	Location  string `json:"location"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Notes     string `json:"notes,omitempty"`
}

type GetJourneyResponse struct {
	Status string `json:"status"`
	Data   struct {
		ProductID int64              `json:"product_id"`
		Entries   []JourneyEntryData `json:"entries"`
	} `json:"data"`
}

type LedgerStatsResponse struct {
	Status string `json:"status"`
	Data   struct {
		TotalProducts int64 `json:"total_products"`
	} `json:"data"`
}

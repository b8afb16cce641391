package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AuthorizeHandlerResponse struct {
	Status string `json:"status"`
	Data   struct {
		HandlerID    string `json:"handler_id"`
		AuthorizedBy string `json:"authorized_by"`
		AuthorizedAt string `json:"authorized_at"`
	} `json:"data"`
}

type RevokeHandlerResponse struct {
	Status string `json:"status"`
	Data   struct {
		HandlerID string `json:"handler_id"`
		Revoked   bool   `json:"revoked"`
	} `json:"data"`
}

type HandlerStatusResponse struct {
	Status string `json:"status"`
	Data   struct {
		HandlerID  string `json:"handler_id"`
		Authorized bool   `json:"authorized"`
		IsOwner    bool   `json:"is_owner"`
	} `json:"data"`
}

type ListHandlersResponse struct {
	Status string `json:"status"`
	Data   struct {
		Handlers []struct {
			HandlerID    string `json:"handler_id"`
			IsOwner      bool   `json:"is_owner"`
			AuthorizedBy string `json:"authorized_by,omitempty"`
			AuthorizedAt string `json:"authorized_at,omitempty"`
		} `json:"handlers"`
	} `json:"data"`
}

package payment

type SubmitRequest struct {
	Plan string `json:"plan"`
	UTR  string `json:"utr"`
}

type DecisionResponse struct {
	UID        string   `json:"uid"`
	Decision   Decision `json:"decision"`
	Plan       string   `json:"plan"`
	ExpiryDate *int64   `json:"expiryDate,omitempty"`
}

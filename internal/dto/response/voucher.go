package response

type VoucherResponse struct {
	Valid    bool    `json:"valid"`
	Code     string  `json:"code"`
	Name     *string `json:"name,omitempty"`
	Discount *string `json:"discount,omitempty"`
}

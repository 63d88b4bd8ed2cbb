package model

// カタログ商品（読み取り専用）。
type Product struct {
	ID    string `json:"productId"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Image string `json:"image,omitempty"`
}

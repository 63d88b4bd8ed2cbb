package model

// カートの明細。サーバー側カートの読み取りコピーで、クライアントは保持しない。
type CartItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int64  `json:"qty"`
	Image     string `json:"image,omitempty"`
}

// サーバーカートのスナップショット。productIdはユニーク。
type Cart struct {
	Items []CartItem `json:"items"`
}

// Subtotal は qty × unitPrice の合計。
// カート画面とチェックアウト画面で同じ計算を使う。
func (c Cart) Subtotal() int64 {
	var total int64 = 0
	for _, it := range c.Items {
		total += it.Quantity * it.UnitPrice
	}
	return total
}

// IsEmpty は明細ゼロかどうか。
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

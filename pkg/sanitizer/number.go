package sanitizer

func ClampQuantity(quantity, min, max int) int {
	if quantity < min {
		return min
	}
	if quantity > max {
		return max
	}
	return quantity
}

package notify

import "fmt"

// expiredPhrase marks the one-off notice sent once a product is past its expiry date.
const expiredPhrase = "has expired"

func expiryMessage(name string, daysLeft int) string {
	return fmt.Sprintf(`Product "%s" will expire in %d days.`, name, daysLeft+1)
}

func expiredMessage(name string) string {
	return fmt.Sprintf(`Product "%s" %s.`, name, expiredPhrase)
}

func reorderMessage(username, name string, quantity, reorderLevel int) string {
	if quantity == 0 {
		return fmt.Sprintf(`Dear "%s" your product "%s" is out of stock reorder quickly`, username, name)
	}
	return fmt.Sprintf(`Dear "%s" the product quantity of "%s" is running low. Please restock soon. Current quantity: %d, Reorder level: %d`,
		username, name, quantity, reorderLevel)
}

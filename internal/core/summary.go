package core

// Balance is the money position of one user.
type Balance struct {
	Username  string
	Incomes   Money
	Purchases Money // confirmed purchases
	Planned   Money // purchases on wishlists not yet confirmed
	Total     Money // Incomes - Purchases
}

// NewBalance derives the total from the three sums.
func NewBalance(username string, incomes, purchases, planned Money) Balance {
	return Balance{
		Username:  username,
		Incomes:   incomes,
		Purchases: purchases,
		Planned:   planned,
		Total:     incomes.Sub(purchases),
	}
}

// ItemRow is one line of a purchase list: the item plus its category picture.
type ItemRow struct {
	ItemID int64
	Name   string
	Price  Money
	Amount int
	PicID  int
}

// Cost is price times amount.
func (r ItemRow) Cost() Money {
	return r.Price.Times(r.Amount)
}

// IncomeRow is one line of an income list.
type IncomeRow struct {
	ID    int64
	Value Money
	Date  Date
	PicID int
}

// WishListSummary is a wishlist with the total cost of its items.
type WishListSummary struct {
	WishList
	Total Money
}

// WishListItem is an item of a wishlist with its category picture.
type WishListItem struct {
	Item
	PicID int
}

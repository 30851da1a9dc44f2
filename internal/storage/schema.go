package storage

// Table names. The DDL lives in migrations/.
const (
	TableUsers      = "users"
	TableCategories = "categories"
	TableItems      = "items"
	TableIncomes    = "incomes"
	TableWishLists  = "wish_lists"
	TablePurchases  = "purchases"
)

// Tables lists every table in dependency order.
var Tables = []string{
	TableUsers,
	TableCategories,
	TableItems,
	TableIncomes,
	TableWishLists,
	TablePurchases,
}

// knownTable reports whether name is one of Tables. Table names cannot be
// bound as parameters, so anything interpolated into SQL must pass this check.
func knownTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

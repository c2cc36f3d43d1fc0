package core

// PaymentMethod is an entry of the fixed payment method list.
type PaymentMethod struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// ColorPair couples an avatar fill token with its text token.
type ColorPair struct {
	Fill string `json:"fill"`
	Text string `json:"text"`
	Name string `json:"name"`
}

const (
	PaymentCash     = "efectivo"
	PaymentDebit    = "debito"
	PaymentCredit   = "credito"
	PaymentTransfer = "transferencia"

	DefaultPaymentMethod = PaymentCash

	// Custom categories created from the edit flow.
	CustomCategoryIcon  = "category"
	CustomCategoryColor = "bg-indigo-100 text-indigo-500"
)

var PaymentMethods = []PaymentMethod{
	{ID: PaymentCash, Label: "Efectivo", Icon: "payments"},
	{ID: PaymentDebit, Label: "Débito", Icon: "credit_card"},
	{ID: PaymentCredit, Label: "Crédito", Icon: "card_membership"},
	{ID: PaymentTransfer, Label: "Transferencia", Icon: "account_balance"},
}

var Palette = []ColorPair{
	{Fill: "bg-pink-500", Text: "text-pink-500", Name: "Rosa"},
	{Fill: "bg-blue-500", Text: "text-blue-500", Name: "Azul"},
	{Fill: "bg-purple-500", Text: "text-purple-500", Name: "Morado"},
	{Fill: "bg-green-500", Text: "text-green-500", Name: "Verde"},
	{Fill: "bg-orange-500", Text: "text-orange-500", Name: "Naranja"},
	{Fill: "bg-indigo-500", Text: "text-indigo-500", Name: "Índigo"},
}

// CategoryIcons are the icon names offered when creating a category.
var CategoryIcons = []string{
	"restaurant", "local_cafe", "local_bar", "cake", "local_pizza", "liquor", "icecream", "bakery_dining", "lunch_dining",
	"directions_car", "local_taxi", "flight", "directions_bus", "train", "subway", "two_wheeler", "local_gas_station", "commute",
	"shopping_cart", "shopping_bag", "store", "card_giftcard", "receipt", "sell", "checkroom",
	"home", "apartment", "cottage", "wifi", "water_drop", "bolt", "lightbulb", "plumbing", "kitchen", "bed", "chair", "build",
	"movie", "videogame_asset", "music_note", "sports_soccer", "sports_tennis", "pool", "spa", "park", "beach_access", "forest", "toys",
	"medical_services", "local_hospital", "local_pharmacy", "healing", "fitness_center", "monitor_heart",
	"work", "business", "savings", "attach_money", "euro", "currency_bitcoin", "add_card", "wallet", "account_balance",
	"school", "book", "child_care", "baby_changing_station",
	"pets",
	"local_laundry_service", "dry_cleaning", "construction", "local_shipping", "hotel", "phone_iphone",
	CustomCategoryIcon,
}

// DefaultCategories returns a fresh copy of the seed category set.
func DefaultCategories() []Category {
	return []Category{
		{ID: "cat_1", Name: "Comida", Icon: "restaurant", Color: "bg-orange-100 text-orange-500", Type: CategoryExpense},
		{ID: "cat_2", Name: "Transporte", Icon: "directions_car", Color: "bg-purple-100 text-purple-600", Type: CategoryExpense},
		{ID: "cat_3", Name: "Vivienda", Icon: "home", Color: "bg-blue-100 text-blue-600", Type: CategoryExpense},
		{ID: "cat_4", Name: "Salario", Icon: "payments", Color: "bg-green-100 text-green-600", Type: CategoryIncome},
		{ID: "cat_5", Name: "Entretenimiento", Icon: "movie", Color: "bg-pink-100 text-pink-500", Type: CategoryExpense},
	}
}

// DefaultUsers returns a fresh copy of the two seeded household members.
func DefaultUsers() []UserProfile {
	return []UserProfile{
		{ID: "user_1", Name: "Valeria", Color: "bg-pink-500", TextColor: "text-pink-500"},
		{ID: "user_2", Name: "Andrés", Color: "bg-blue-500", TextColor: "text-blue-500"},
	}
}

// NewCustomCategory builds the category the edit flow creates on the fly.
func NewCustomCategory(name, icon string) Category {
	if icon == "" {
		icon = CustomCategoryIcon
	}
	return Category{
		Name:  name,
		Icon:  icon,
		Color: CustomCategoryColor,
		Type:  CategoryBoth,
	}
}

// IsCategoryIcon reports whether name is one of CategoryIcons.
func IsCategoryIcon(name string) bool {
	for _, i := range CategoryIcons {
		if i == name {
			return true
		}
	}
	return false
}

func IsPaymentMethod(id string) bool {
	for _, pm := range PaymentMethods {
		if pm.ID == id {
			return true
		}
	}
	return false
}

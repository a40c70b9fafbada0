package domain

// Catalog slots
const (
	SlotTorso = "torso"
	SlotLegs  = "legs"
)

// ShopItem is a static catalog entry. Items are cosmetic only; the ID is
// what lands in a profile's inventory.
type ShopItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int    `json:"price"`
	Gender   string `json:"gender"`
	Slot     string `json:"slot"`
	Color    string `json:"color"`
}

// Catalog is the full static shop catalog
var Catalog = []ShopItem{
	{ID: "goku_gi", Name: "Goku Gi", Category: "anime", Price: 500, Gender: "male", Slot: SlotTorso, Color: "#FF9900"},
	{ID: "naruto_orange", Name: "Naruto Jacket", Category: "anime", Price: 500, Gender: "both", Slot: SlotTorso, Color: "#FFA500"},
	{ID: "luffy_vest", Name: "Luffy Vest", Category: "anime", Price: 450, Gender: "male", Slot: SlotTorso, Color: "#CC0000"},
	{ID: "sailor_uniform", Name: "Sailor Uniform", Category: "anime", Price: 500, Gender: "female", Slot: SlotTorso, Color: "#0000FF"},
	{ID: "brazil_jersey", Name: "Brazil Jersey", Category: "teams", Price: 250, Gender: "both", Slot: SlotTorso, Color: "#FFD700"},
	{ID: "flamengo_jersey", Name: "Flamengo Jersey", Category: "teams", Price: 250, Gender: "both", Slot: SlotTorso, Color: "#CC0000"},
	{ID: "real_madrid", Name: "Real Madrid Jersey", Category: "teams", Price: 200, Gender: "both", Slot: SlotTorso, Color: "#FFFFFF"},
	{ID: "nba_lakers", Name: "Lakers Tank Top", Category: "teams", Price: 220, Gender: "both", Slot: SlotTorso, Color: "#552583"},
	{ID: "black_hoodie", Name: "Black Hoodie", Category: "common", Price: 100, Gender: "both", Slot: SlotTorso, Color: "#111111"},
	{ID: "white_tshirt", Name: "White T-Shirt", Category: "common", Price: 50, Gender: "both", Slot: SlotTorso, Color: "#FFFFFF"},
	{ID: "gym_shorts", Name: "Gym Shorts", Category: "common", Price: 70, Gender: "both", Slot: SlotLegs, Color: "#333333"},
	{ID: "yoga_pants", Name: "Yoga Pants", Category: "common", Price: 80, Gender: "female", Slot: SlotLegs, Color: "#444444"},
}

// CatalogItem looks up a catalog entry by ID
func CatalogItem(itemID string) (ShopItem, bool) {
	for _, item := range Catalog {
		if item.ID == itemID {
			return item, true
		}
	}
	return ShopItem{}, false
}

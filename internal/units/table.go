package units

// Canonical units. Ingredient units are normalized to one of these values
// whenever the raw unit is known.
const (
	Gram       = "g"
	Kilogram   = "kg"
	Milligram  = "mg"
	Milliliter = "ml"
	Centiliter = "cl"
	Deciliter  = "dl"
	Liter      = "l"
	Teaspoon   = "tsp"
	Tablespoon = "tbsp"
	Cup        = "cup"
	Piece      = "piece"
	Pinch      = "pinch"
	Clove      = "clove"
	Can        = "can"
	Bunch      = "bunch"
	Slice      = "slice"
	Handful    = "handful"
	Sprig      = "sprig"
	Packet     = "packet"
	Ounce      = "oz"
	Pound      = "lb"
	Drop       = "drop"
	Dash       = "dash"
)

// Canonical lists every canonical unit.
var Canonical = []string{
	Gram, Kilogram, Milligram, Milliliter, Centiliter, Deciliter, Liter,
	Teaspoon, Tablespoon, Cup, Piece, Pinch, Clove, Can, Bunch, Slice,
	Handful, Sprig, Packet, Ounce, Pound, Drop, Dash,
}

// translations maps lower-cased raw units (Dutch and English) to canonical
// units. Every canonical unit maps to itself.
var translations = map[string]string{
	"g": Gram, "gr": Gram, "gram": Gram, "grams": Gram, "gramme": Gram,
	"kg": Kilogram, "kilo": Kilogram, "kilogram": Kilogram, "kilograms": Kilogram, "kilo's": Kilogram,
	"mg": Milligram, "milligram": Milligram, "milligrams": Milligram,
	"ml": Milliliter, "milliliter": Milliliter, "milliliters": Milliliter, "millilitre": Milliliter, "millilitres": Milliliter,
	"cl": Centiliter, "centiliter": Centiliter, "centiliters": Centiliter,
	"dl": Deciliter, "deciliter": Deciliter, "deciliters": Deciliter,
	"l": Liter, "ltr": Liter, "liter": Liter, "liters": Liter, "litre": Liter, "litres": Liter,
	"tsp": Teaspoon, "tl": Teaspoon, "theelepel": Teaspoon, "theelepels": Teaspoon, "teaspoon": Teaspoon, "teaspoons": Teaspoon,
	"tbsp": Tablespoon, "el": Tablespoon, "eetlepel": Tablespoon, "eetlepels": Tablespoon, "tablespoon": Tablespoon, "tablespoons": Tablespoon, "tbs": Tablespoon,
	"cup": Cup, "cups": Cup, "kop": Cup, "kopje": Cup, "kopjes": Cup,
	"piece": Piece, "pieces": Piece, "pc": Piece, "pcs": Piece, "stuk": Piece, "stuks": Piece, "st": Piece,
	"pinch": Pinch, "pinches": Pinch, "snuf": Pinch, "snufje": Pinch, "snufjes": Pinch, "mespunt": Pinch, "mespuntje": Pinch,
	"clove": Clove, "cloves": Clove, "teen": Clove, "teentje": Clove, "teentjes": Clove, "tenen": Clove,
	"can": Can, "cans": Can, "tin": Can, "tins": Can, "blik": Can, "blikje": Can, "blikjes": Can, "blikken": Can,
	"bunch": Bunch, "bunches": Bunch, "bos": Bunch, "bosje": Bunch, "bosjes": Bunch,
	"slice": Slice, "slices": Slice, "plak": Slice, "plakje": Slice, "plakjes": Slice, "plakken": Slice,
	"handful": Handful, "handfuls": Handful, "handje": Handful, "handjes": Handful, "hand": Handful,
	"sprig": Sprig, "sprigs": Sprig, "takje": Sprig, "takjes": Sprig,
	"packet": Packet, "packets": Packet, "pack": Packet, "pak": Packet, "pakje": Packet, "pakjes": Packet, "zakje": Packet, "zakjes": Packet,
	"oz": Ounce, "ounce": Ounce, "ounces": Ounce,
	"lb": Pound, "lbs": Pound, "pound": Pound, "pounds": Pound,
	"drop": Drop, "drops": Drop, "druppel": Drop, "druppels": Drop,
	"dash": Dash, "dashes": Dash, "scheutje": Dash, "scheut": Dash,
}

package normalizer

import "github.com/dtnitsch/brew-crawler/models"

// DefaultExclusions are substrings marking water treatments, finings, priming
// and other additions that are not grains or hops.
var DefaultExclusions = []string{
	"whirlfloc",
	"irish moss",
	"gypsum",
	"calcium chloride",
	"calcium carbonate",
	"epsom",
	"campden",
	"lactic acid",
	"phosphoric acid",
	"priming",
	"yeast nutrient",
	"servomyces",
	"extract",
	"honey",
	"water",
	"salt",
	"rice hulls",
	"gelatin",
}

// DefaultHopVarieties are single words that identify a hop addition in free text.
var DefaultHopVarieties = []string{
	"ahtanum", "amarillo", "apollo", "azacca", "bramling", "calypso", "cascade",
	"centennial", "challenger", "chinook", "citra", "cluster", "columbus", "comet",
	"ctz", "denali", "dorado", "ekuanot", "equinox", "eureka", "fuggle", "fuggles",
	"galaxy", "galena", "glacier", "golding", "goldings", "hallertau", "hallertauer",
	"hersbrucker", "horizon", "huell", "liberty", "loral", "magnum", "mandarina",
	"mosaic", "motueka", "nelson", "northdown", "nugget", "palisade", "perle",
	"polaris", "riwaka", "saaz", "sabro", "saphir", "simcoe", "sorachi", "spalt",
	"sterling", "strata", "styrian", "summit", "talus", "tettnang", "tettnanger",
	"tomahawk", "topaz", "wakatu", "warrior", "willamette", "zeus",
}

// DefaultGrainAliases are applied in order; specific spellings come before the
// broad caramel rewrite.
var DefaultGrainAliases = []models.AliasRule{
	{Pattern: `caramel\s*/\s*crystal|crystal\s*/\s*caramel`, Replacement: "Crystal"},
	{Pattern: `cara-?pils\s*/\s*dextrine?|cara-?pils|\bdextrine?\b`, Replacement: "Carapils"},
	{Pattern: `pale\s+malt\s*\(\s*(2|two)[\s-]?row\s*\)(\s+us)?`, Replacement: "Pale 2-Row"},
	{Pattern: `\b(american|us|domestic|pale\s+ale)\s+(2|two)[\s-]?row`, Replacement: "Pale 2-Row"},
	{Pattern: `\b(2|two)[\s-]?row\s+pale`, Replacement: "Pale 2-Row"},
	{Pattern: `^\s*(2|two)[\s-]?row(\s+malt)?\s*$`, Replacement: "Pale 2-Row"},
	{Pattern: `^\s*([a-z]+)\s*,\s*(flaked|torrified|rolled|roasted|malted)\s*$`, Replacement: "${2} ${1}"},
	{Pattern: `\bcaramel\b`, Replacement: "Crystal"},
}

type unitInfo struct {
	canonical string
	factor    float64
}

// units maps every recognized unit token to its canonical unit. Units without a
// conversion keep their own spelling.
var units = map[string]unitInfo{
	"lb": {"lbs", 1}, "lbs": {"lbs", 1}, "pound": {"lbs", 1}, "pounds": {"lbs", 1},
	"kg": {"lbs", 2.2}, "kgs": {"lbs", 2.2}, "kilogram": {"lbs", 2.2}, "kilograms": {"lbs", 2.2},
	"oz": {"lbs", 0.0625}, "ounce": {"lbs", 0.0625}, "ounces": {"lbs", 0.0625},
	"g": {"lbs", 0.00220462}, "gr": {"lbs", 0.00220462}, "gram": {"lbs", 0.00220462}, "grams": {"lbs", 0.00220462},
	"gal": {"gal", 1}, "gals": {"gal", 1}, "gallon": {"gal", 1}, "gallons": {"gal", 1},
	"l": {"gal", 0.264172}, "liter": {"gal", 0.264172}, "liters": {"gal", 0.264172},
	"litre": {"gal", 0.264172}, "litres": {"gal", 0.264172},
	"ml": {"gal", 0.000264172},
	"tsp": {"tsp", 1}, "teaspoon": {"tsp", 1}, "teaspoons": {"tsp", 1},
	"tbsp": {"tbsp", 1}, "tablespoon": {"tbsp", 1}, "tablespoons": {"tbsp", 1},
	"pkg": {"pkg", 1}, "package": {"pkg", 1}, "packages": {"pkg", 1}, "pack": {"pkg", 1}, "packs": {"pkg", 1},
	"cup": {"cup", 1}, "cups": {"cup", 1},
	"qt": {"qt", 1}, "quart": {"qt", 1}, "quarts": {"qt", 1},
}

package serpapi

// City holds the coordinates and province used to anchor a Maps search.
type City struct {
	Lat      float64
	Lng      float64
	Province string
}

// ArgentinaCities maps supported city names to their search anchors.
var ArgentinaCities = map[string]City{
	"Buenos Aires":          {Lat: -34.6037, Lng: -58.3816, Province: "CABA"},
	"CABA":                  {Lat: -34.6037, Lng: -58.3816, Province: "CABA"},
	"Cordoba":               {Lat: -31.4201, Lng: -64.1888, Province: "Córdoba"},
	"Rosario":               {Lat: -32.9442, Lng: -60.6505, Province: "Santa Fe"},
	"Mendoza":               {Lat: -32.8895, Lng: -68.8458, Province: "Mendoza"},
	"San Miguel de Tucuman": {Lat: -26.8083, Lng: -65.2176, Province: "Tucumán"},
	"La Plata":              {Lat: -34.9205, Lng: -57.9536, Province: "Buenos Aires"},
	"Mar del Plata":         {Lat: -38.0023, Lng: -57.5575, Province: "Buenos Aires"},
	"Salta":                 {Lat: -24.7821, Lng: -65.4232, Province: "Salta"},
	"Santa Fe":              {Lat: -31.6333, Lng: -60.7000, Province: "Santa Fe"},
	"San Juan":              {Lat: -31.5375, Lng: -68.5364, Province: "San Juan"},
	"Neuquen":               {Lat: -38.9516, Lng: -68.0591, Province: "Neuquén"},
	"Bahia Blanca":          {Lat: -38.7196, Lng: -62.2724, Province: "Buenos Aires"},
	"Resistencia":           {Lat: -27.4606, Lng: -58.9839, Province: "Chaco"},
	"Posadas":               {Lat: -27.3671, Lng: -55.8961, Province: "Misiones"},
	"San Salvador de Jujuy": {Lat: -24.1858, Lng: -65.2995, Province: "Jujuy"},
	"Parana":                {Lat: -31.7413, Lng: -60.5115, Province: "Entre Ríos"},
	"Formosa":               {Lat: -26.1775, Lng: -58.1781, Province: "Formosa"},
	"San Luis":              {Lat: -33.3017, Lng: -66.3378, Province: "San Luis"},
	"Santiago del Estero":   {Lat: -27.7951, Lng: -64.2615, Province: "Santiago del Estero"},
	"Catamarca":             {Lat: -28.4696, Lng: -65.7852, Province: "Catamarca"},
	"La Rioja":              {Lat: -29.4131, Lng: -66.8558, Province: "La Rioja"},
	"Rio Gallegos":          {Lat: -51.6230, Lng: -69.2168, Province: "Santa Cruz"},
	"Ushuaia":               {Lat: -54.8019, Lng: -68.3030, Province: "Tierra del Fuego"},
	"Rawson":                {Lat: -43.3002, Lng: -65.1023, Province: "Chubut"},
	"Viedma":                {Lat: -40.8135, Lng: -62.9967, Province: "Río Negro"},
	"Santa Rosa":            {Lat: -36.6167, Lng: -64.2833, Province: "La Pampa"},
}

// RealEstateKeywords are the default search terms for discovery runs.
var RealEstateKeywords = []string{
	"inmobiliaria",
	"bienes raices",
	"real estate",
	"propiedades",
	"agencia inmobiliaria",
}

// AvailableCities returns the supported city names.
func AvailableCities() []string {
	cities := make([]string, 0, len(ArgentinaCities))
	for name := range ArgentinaCities {
		cities = append(cities, name)
	}
	return cities
}

// LookupCity resolves a city name with accent folding, so "Córdoba"
// matches the "Cordoba" table entry.
func LookupCity(name string) (City, bool) {
	if city, ok := ArgentinaCities[name]; ok {
		return city, true
	}
	folded := Fold(name)
	for key, city := range ArgentinaCities {
		if Fold(key) == folded {
			return city, true
		}
	}
	return City{}, false
}

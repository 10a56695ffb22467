package resolve

// buildSet is a small helper turning a variadic name list into a set,
// used by every frozen table in this package.
func buildSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// suspiciousNames are generic top-level module names overwhelmingly
// used for local application code rather than published
// distributions. Applied only as a fallback, after the local-module
// filter has already had its chance to drop a genuine local package.
var suspiciousNames = buildSet(
	"app", "apps", "config", "configs", "settings", "utils", "util",
	"common", "core", "models", "model", "views", "view", "forms",
	"form", "middleware", "migrations", "plugins", "plugin", "lib",
	"libs", "helpers", "helper", "services", "service", "handlers",
	"handler", "api", "apis", "routes", "router", "schemas", "schema",
	"serializers", "tasks", "managers", "manager", "constants", "types",
	"exceptions", "validators", "mixins", "admin", "tests", "test",
	"scripts", "src", "main",
)

// staticMapping is the built-in import-name-to-distribution-name
// table for the common cases where the two differ in ways no general
// rule predicts.
var staticMapping = map[string]string{
	"cv2":          "opencv-python",
	"PIL":          "Pillow",
	"zmq":          "pyzmq",
	"Crypto":       "pycryptodome",
	"Cryptodome":   "pycryptodome",
	"yaml":         "PyYAML",
	"wx":           "wxPython",
	"git":          "GitPython",
	"docx":         "python-docx",
	"pptx":         "python-pptx",
	"kafka":        "kafka-python",
	"nacl":         "PyNaCl",
	"skimage":      "scikit-image",
	"sklearn":      "scikit-learn",
	"attr":         "attrs",
	"attrs":        "attrs",
	"bs4":          "beautifulsoup4",
	"jwt":          "PyJWT",
	"dateutil":     "python-dateutil",
	"dotenv":       "python-dotenv",
	"jose":         "python-jose",
	"magic":        "python-magic",
	"slugify":      "python-slugify",
	"serial":       "pyserial",
	"usb":          "pyusb",
	"OpenSSL":      "pyOpenSSL",
	"gi":           "PyGObject",
	"Xlib":         "python-xlib",
	"snappy":       "python-snappy",
	"ldap3":        "ldap3",
	"ldap":         "python-ldap",
	"MySQLdb":      "mysqlclient",
	"psycopg2":     "psycopg2-binary",
	"markdown":     "Markdown",
	"docopt":       "docopt",
	"toml":         "toml",
	"ujson":        "ujson",
	"simplejson":   "simplejson",
	"lxml":         "lxml",
	"jinja2":       "Jinja2",
	"flask_cors":   "Flask-Cors",
	"flask_sqlalchemy": "Flask-SQLAlchemy",
	"flask_login":  "Flask-Login",
	"flask_wtf":    "Flask-WTF",
	"wtforms":      "WTForms",
	"websocket":    "websocket-client",
	"websockets":   "websockets",
	"grpc":         "grpcio",
	"google":       "protobuf",
	"jwcrypto":     "jwcrypto",
	"telebot":      "pyTelegramBotAPI",
	"discord":      "discord.py",
	"praw":         "praw",
	"tweepy":       "tweepy",
	"babel":        "Babel",
	"caldav":       "caldav",
	"icalendar":    "icalendar",
	"paramiko":     "paramiko",
	"fabric":       "fabric",
	"invoke":       "invoke",
	"click":        "click",
	"typer":        "typer",
	"rich":         "rich",
	"tqdm":         "tqdm",
	"redis":        "redis",
	"pymongo":      "pymongo",
	"cassandra":    "cassandra-driver",
	"elasticsearch": "elasticsearch",
}

// normalizeDistribution lowercases a distribution name and replaces
// underscores with hyphens, the canonical form PyPI uses for name
// comparisons per PEP 503.
func normalizeDistribution(name string) string {
	b := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_':
			b[i] = '-'
		case c >= 'A' && c <= 'Z':
			b[i] = c - 'A' + 'a'
		default:
			b[i] = c
		}
	}
	return string(b)
}

// extrasTable maps a resolved distribution to peer distributions that
// are almost always installed alongside it in a working deployment,
// e.g. an ASGI server for a framework that does not bundle one.
var extrasTable = map[string][]string{
	"fastapi":    {"uvicorn"},
	"django":     {"gunicorn"},
	"flask":      {"gunicorn"},
	"celery":     {"redis"},
	"sqlalchemy": {"psycopg2-binary"},
	"starlette":  {"uvicorn"},
	"aiohttp":    {"aiodns"},
}

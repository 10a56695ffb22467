package resolve

// bundledIndex is a frozen snapshot of distribution names popular
// enough that shipping them with the binary saves a network round
// trip for the overwhelming majority of real projects. Entries are
// already in normalized (lowercase, hyphenated) form.
var bundledIndex = buildSet(
	"requests", "numpy", "pandas", "scipy", "matplotlib", "flask",
	"django", "fastapi", "pydantic", "sqlalchemy", "alembic", "pytest",
	"click", "typer", "rich", "tqdm", "pillow", "pyyaml", "jinja2",
	"markupsafe", "werkzeug", "gunicorn", "uvicorn", "starlette",
	"httpx", "aiohttp", "urllib3", "certifi", "idna", "charset-normalizer",
	"boto3", "botocore", "s3transfer", "google-cloud-storage",
	"azure-storage-blob", "redis", "pymongo", "psycopg2-binary",
	"mysqlclient", "pymysql", "cryptography", "pyjwt", "passlib",
	"bcrypt", "attrs", "packaging", "setuptools", "wheel", "pip",
	"six", "python-dateutil", "pytz", "tzdata", "pyparsing",
	"beautifulsoup4", "lxml", "scrapy", "selenium", "playwright",
	"celery", "kombu", "billiard", "vine", "gevent", "greenlet",
	"gevent-websocket", "websockets", "websocket-client", "grpcio",
	"protobuf", "googleapis-common-protos", "opentelemetry-api",
	"opentelemetry-sdk", "prometheus-client", "structlog", "loguru",
	"colorama", "termcolor", "tabulate", "humanize", "arrow", "pendulum",
	"marshmallow", "cerberus", "jsonschema", "ujson", "orjson",
	"simplejson", "toml", "tomli", "ruamel.yaml", "configobj",
	"python-dotenv", "environs", "dynaconf", "pyngrok", "honcho",
	"supervisor", "sentry-sdk", "rollbar", "newrelic", "datadog",
	"ddtrace", "statsd", "graphene", "strawberry-graphql", "ariadne",
	"graphql-core", "drf-yasg", "djangorestframework", "django-filter",
	"django-cors-headers", "django-environ", "django-storages",
	"django-allauth", "channels", "daphne", "asgiref", "whitenoise",
	"flask-sqlalchemy", "flask-migrate", "flask-login", "flask-wtf",
	"flask-cors", "flask-restful", "wtforms", "itsdangerous",
	"blinker", "tenacity", "backoff", "retrying", "more-itertools",
	"toolz", "cytoolz", "funcy", "joblib", "dill", "cloudpickle",
	"scikit-learn", "scikit-image", "opencv-python", "torch",
	"torchvision", "tensorflow", "keras", "transformers", "tokenizers",
	"datasets", "huggingface-hub", "accelerate", "sentencepiece",
	"nltk", "spacy", "gensim", "networkx", "sympy", "statsmodels",
	"seaborn", "plotly", "bokeh", "altair", "dash", "streamlit",
	"gradio", "jupyter", "jupyterlab", "notebook", "ipython",
	"ipykernel", "ipywidgets", "nbformat", "nbconvert", "papermill",
	"xarray", "dask", "distributed", "numba", "cython", "h5py",
	"pyarrow", "fastparquet", "openpyxl", "xlrd", "xlsxwriter",
	"python-pptx", "python-docx", "pypdf", "pdfplumber", "reportlab",
	"weasyprint", "markdown", "mistune", "docutils", "sphinx",
	"mkdocs", "pyinstaller", "cx-freeze", "twine", "build", "hatchling",
	"poetry-core", "pip-tools", "virtualenv", "pipenv", "tox", "nox",
	"pre-commit", "black", "isort", "flake8", "pylint", "mypy",
	"ruff", "bandit", "coverage", "pytest-cov", "pytest-mock",
	"pytest-asyncio", "pytest-xdist", "hypothesis", "faker", "factory-boy",
	"responses", "vcrpy", "freezegun", "moto", "testcontainers",
	"docker", "kubernetes", "paramiko", "fabric", "invoke", "ansible",
	"pyserial", "pyusb", "psutil", "py-cpuinfo", "wmi", "pywin32",
	"cffi", "pycparser", "pynacl", "pycryptodome", "pyopenssl",
	"service-identity", "zope.interface", "twisted", "autobahn",
	"pika", "kafka-python", "confluent-kafka", "nats-py", "aiokafka",
	"asyncpg", "aiomysql", "aiosqlite", "databases", "tortoise-orm",
	"peewee", "pony", "mongoengine", "elasticsearch", "elasticsearch-dsl",
	"opensearch-py", "cassandra-driver", "neo4j", "influxdb-client",
	"prometheus-flask-exporter", "locust", "gevent-ws",
)

// isBundled reports whether normalized (lowercase, hyphenated) is a
// known-popular distribution shipped in the binary's own index.
func isBundled(normalized string) bool {
	_, ok := bundledIndex[normalized]
	return ok
}

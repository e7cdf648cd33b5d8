package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/privacyx/guardian/internal/domain"
	"gopkg.in/yaml.v3"
)

// CredentialEnv environment variable holding the completion service key.
const CredentialEnv = "OPENAI_API_KEY"

const (
	defaultConfigPath   = "guardian.yaml"
	defaultRPCURL       = "https://ethereum-rpc.publicnode.com"
	defaultListenAddr   = ":8080"
	defaultAPIURL       = "https://api.openai.com/v1/chat/completions"
	defaultModel        = "gpt-3.5-turbo"
	defaultTemperature  = 0.7
	defaultMaxRetries   = 2
	defaultLLMTimeout   = 60 * time.Second
	defaultBulletCount  = 3
	defaultPrivacyToken = "PRVX"
	defaultLogLevel     = "info"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Credential completion service key. The zero value is the absent credential.
type Credential struct {
	value string
}

// NewCredential creates a credential; blank input yields the absent credential.
func NewCredential(value string) Credential {
	return Credential{value: strings.TrimSpace(value)}
}

// Present reports whether a key was supplied.
func (c Credential) Present() bool {
	return c.value != ""
}

// Value returns the raw key, empty when absent.
func (c Credential) Value() string {
	return c.value
}

// String never prints the key.
func (c Credential) String() string {
	if !c.Present() {
		return "<absent>"
	}
	return "<redacted>"
}

// LLM completion service settings.
type LLM struct {
	APIURL      string
	Model       string
	Temperature float64
	MaxRetries  int
	Timeout     time.Duration
	// Bullets number of personalised tips requested per analysis.
	Bullets int
}

type Config struct {
	Path     string
	RunSetup bool

	RPCURLs    []string
	ListenAddr string
	LogLevel   string
	JournalDir string

	LLM        LLM
	Credential Credential

	Native       domain.TokenDescriptor
	Tokens       []domain.TokenDescriptor
	PrivacyToken string
}

type ConfigTmp struct {
	RPCURLs        []string                 `yaml:"rpc_urls"`
	Listen         string                   `yaml:"listen,omitempty"`
	LogLevel       string                   `yaml:"log_level,omitempty"`
	JournalDir     string                   `yaml:"journal_dir,omitempty"`
	APIURL         string                   `yaml:"api_url,omitempty"`
	Model          string                   `yaml:"model,omitempty"`
	TemperatureStr string                   `yaml:"temperature,omitempty"`
	MaxRetriesStr  string                   `yaml:"max_retries,omitempty"`
	Timeout        time.Duration            `yaml:"timeout,omitempty"`
	BulletsStr     string                   `yaml:"bullets,omitempty"`
	PrivacyToken   string                   `yaml:"privacy_token,omitempty"`
	Native         *domain.TokenDescriptor  `yaml:"native,omitempty"`
	Tokens         []domain.TokenDescriptor `yaml:"tokens,omitempty"`
}

// DefaultNative is the Ethereum mainnet native currency.
func DefaultNative() domain.TokenDescriptor {
	return domain.TokenDescriptor{
		Name:     "Ethereum",
		Symbol:   "ETH",
		Decimals: 18,
		Icon:     "https://raw.githubusercontent.com/spothq/cryptocurrency-icons/master/128/color/eth.png",
	}
}

// DefaultTokens is the token set inspected when the config file does not list any.
func DefaultTokens() []domain.TokenDescriptor {
	return []domain.TokenDescriptor{
		{
			Name:     "PrivacyX",
			Symbol:   "PRVX",
			Contract: "0x700509775B89e6695Da271c79c976d65846A0180",
			Decimals: 18,
			Icon:     "https://raw.githubusercontent.com/Privacyx-org/prvx-assets/main/logo-PRVX-32x32.svg",
		},
		{
			Name:     "Tether",
			Symbol:   "USDT",
			Contract: "0xdAC17F958D2ee523a2206206994597C13D831ec7",
			Decimals: 6,
			Icon:     "https://cryptologos.cc/logos/tether-usdt-logo.png?v=029",
		},
		{
			Name:     "Dai Stablecoin",
			Symbol:   "DAI",
			Contract: "0x6B175474E89094C44Da98b954EedeAC495271d0F",
			Decimals: 18,
			Icon:     "https://cryptologos.cc/logos/multi-collateral-dai-dai-logo.png?v=029",
		},
	}
}

// Default returns the configuration used when neither a file nor flags override it.
func Default() Config {
	return Config{
		Path:       defaultConfigPath,
		RPCURLs:    []string{defaultRPCURL},
		ListenAddr: defaultListenAddr,
		LogLevel:   defaultLogLevel,
		LLM: LLM{
			APIURL:      defaultAPIURL,
			Model:       defaultModel,
			Temperature: defaultTemperature,
			MaxRetries:  defaultMaxRetries,
			Timeout:     defaultLLMTimeout,
			Bullets:     defaultBulletCount,
		},
		Native:       DefaultNative(),
		Tokens:       DefaultTokens(),
		PrivacyToken: defaultPrivacyToken,
	}
}

// Get reads flags from the command line and the credential from the environment.
func Get() (Config, error) {
	return Parse(os.Args[1:], os.Getenv)
}

// Parse builds the configuration: defaults, then the yaml file, then explicitly set flags.
func Parse(args []string, getenv func(string) string) (Config, error) {
	fs := flag.NewFlagSet("guardian", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to yaml config")
	setup := fs.Bool("setup", false, "run the interactive configuration wizard and write --config")
	rpc := fs.String("rpc", "", "comma separated RPC endpoints, example: https://eth.llamarpc.com")
	listen := fs.String("listen", "", "HTTP listen address, example: :8080")
	apiURL := fs.String("api-url", "", "chat completions endpoint")
	model := fs.String("model", "", "completion model name")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if *configPath != "" {
		cfg.Path = *configPath
	}

	if *setup {
		cfg.RunSetup = true
		return cfg, nil
	}

	if *configPath != "" {
		loaded, err := Load(*configPath)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rpc":
			cfg.RPCURLs = splitList(*rpc)
		case "listen":
			cfg.ListenAddr = *listen
		case "api-url":
			cfg.LLM.APIURL = *apiURL
		case "model":
			cfg.LLM.Model = *model
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	cfg.Credential = NewCredential(getenv(CredentialEnv))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a yaml config; fields missing from the file keep their defaults.
func Load(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := decode(f)
	if err != nil {
		return Config{}, err
	}
	cfg.Path = path
	return cfg, nil
}

func decode(data []byte) (Config, error) {
	var c ConfigTmp
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, errors.Wrap(err, "parse yaml config")
	}

	cfg := Default()
	if len(c.RPCURLs) > 0 {
		cfg.RPCURLs = c.RPCURLs
	}
	if c.Listen != "" {
		cfg.ListenAddr = c.Listen
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	cfg.JournalDir = c.JournalDir
	if c.APIURL != "" {
		cfg.LLM.APIURL = c.APIURL
	}
	if c.Model != "" {
		cfg.LLM.Model = c.Model
	}
	if c.Timeout > 0 {
		cfg.LLM.Timeout = c.Timeout
	}

	if c.TemperatureStr != "" {
		temperature, err := strconv.ParseFloat(c.TemperatureStr, 64)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'temperature' param in yaml config (must be a number), error: %w", err)
		}
		cfg.LLM.Temperature = temperature
	}

	if c.MaxRetriesStr != "" {
		maxRetries, err := strconv.Atoi(c.MaxRetriesStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'max_retries' param in yaml config (must be an integer), error: %w", err)
		}
		cfg.LLM.MaxRetries = maxRetries
	}

	if c.BulletsStr != "" {
		bullets, err := strconv.Atoi(c.BulletsStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'bullets' param in yaml config (must be an integer), error: %w", err)
		}
		cfg.LLM.Bullets = bullets
	}

	if c.PrivacyToken != "" {
		cfg.PrivacyToken = c.PrivacyToken
	}
	if c.Native != nil {
		cfg.Native = *c.Native
	}
	if len(c.Tokens) > 0 {
		cfg.Tokens = c.Tokens
	}

	return cfg, nil
}

// Validate checks the configuration is usable. The credential is optional.
func (c Config) Validate() error {
	if len(c.RPCURLs) == 0 {
		return errors.Wrap(ErrInvalidConfig, "at least one RPC endpoint is required")
	}
	if c.LLM.APIURL == "" {
		return errors.Wrap(ErrInvalidConfig, "api_url is required")
	}
	if c.LLM.Model == "" {
		return errors.Wrap(ErrInvalidConfig, "model is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.Wrapf(ErrInvalidConfig, "temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	if c.LLM.Bullets < 1 {
		return errors.Wrapf(ErrInvalidConfig, "bullets must be at least 1, got %d", c.LLM.Bullets)
	}
	if c.Native.Symbol == "" {
		return errors.Wrap(ErrInvalidConfig, "native currency symbol is required")
	}

	seen := make(map[string]struct{}, len(c.Tokens))
	for i, t := range c.Tokens {
		if t.Symbol == "" {
			return errors.Wrapf(ErrInvalidConfig, "token #%d has no symbol", i)
		}
		if !common.IsHexAddress(t.Contract) {
			return errors.Wrapf(ErrInvalidConfig, "token %s has invalid contract address %q", t.Symbol, t.Contract)
		}
		if _, dup := seen[t.Symbol]; dup {
			return errors.Wrapf(ErrInvalidConfig, "token %s is listed twice", t.Symbol)
		}
		seen[t.Symbol] = struct{}{}
	}
	return nil
}

// Marshal renders the configuration in the yaml layout read by Load. The credential is never written.
func Marshal(c Config) ([]byte, error) {
	native := c.Native
	tmp := ConfigTmp{
		RPCURLs:        c.RPCURLs,
		Listen:         c.ListenAddr,
		LogLevel:       c.LogLevel,
		JournalDir:     c.JournalDir,
		APIURL:         c.LLM.APIURL,
		Model:          c.LLM.Model,
		TemperatureStr: strconv.FormatFloat(c.LLM.Temperature, 'f', -1, 64),
		MaxRetriesStr:  strconv.Itoa(c.LLM.MaxRetries),
		Timeout:        c.LLM.Timeout,
		BulletsStr:     strconv.Itoa(c.LLM.Bullets),
		PrivacyToken:   c.PrivacyToken,
		Native:         &native,
		Tokens:         c.Tokens,
	}
	return yaml.Marshal(tmp)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

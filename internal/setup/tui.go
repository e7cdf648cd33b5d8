// Package setup contains the interactive configuration wizard.
package setup

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/privacyx/guardian/config"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

const wizardTitle = "PRIVACYX GUARDIAN SETUP"

// answers raw wizard input, kept as strings the way the forms edit them.
type answers struct {
	rpcURLs      string
	apiURL       string
	model        string
	temperature  string
	bullets      string
	privacyToken string
	listen       string
}

func defaultAnswers() answers {
	d := config.Default()
	return answers{
		rpcURLs:      strings.Join(d.RPCURLs, ","),
		apiURL:       d.LLM.APIURL,
		model:        d.LLM.Model,
		temperature:  strconv.FormatFloat(d.LLM.Temperature, 'f', -1, 64),
		bullets:      strconv.Itoa(d.LLM.Bullets),
		privacyToken: d.PrivacyToken,
		listen:       d.ListenAddr,
	}
}

// RunTUI launches the terminal configuration wizard and writes the result to path.
func RunTUI(path string) error {
	a := defaultAnswers()
	var confirm bool

	step := func(name string) {
		fmt.Print("\033[H\033[2J") // Clear screen
		fmt.Println(headerStyle.Render(wizardTitle))
		fmt.Println(stepStyle.Render(name))
	}

	step("STEP 1: CHAIN")
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Balances are read through public JSON-RPC endpoints.\n"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("RPC endpoints").
				Description("Comma separated, tried in order").
				Value(&a.rpcURLs).
				Validate(validateRPCList),
		),
	).Run()
	if err != nil {
		return err
	}

	step("STEP 2: AI SETTINGS")
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render(fmt.Sprintf("The API key is read from $%s and never written to the config file.\n", config.CredentialEnv)))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("LLM API URL").
				Value(&a.apiURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Model Name").
				Value(&a.model).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("model cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Temperature").
				Description("0 - 2").
				Value(&a.temperature).
				Validate(validateTemperature),
			huh.NewInput().
				Title("Tips per analysis").
				Value(&a.bullets).
				Validate(validateBullets),
		),
	).Run()
	if err != nil {
		return err
	}

	step("STEP 3: PRIVACY TOKEN")
	tokenOptions := make([]huh.Option[string], 0, len(config.DefaultTokens()))
	for _, t := range config.DefaultTokens() {
		tokenOptions = append(tokenOptions, huh.NewOption(fmt.Sprintf("%s (%s)", t.Name, t.Symbol), t.Symbol))
	}
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Token promoted by staking and mixer tips").
				Options(tokenOptions...).
				Value(&a.privacyToken),
		),
	).Run()
	if err != nil {
		return err
	}

	step("STEP 4: DASHBOARD")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Description("e.g. :8080 or 127.0.0.1:8080").
				Value(&a.listen),
		),
	).Run()
	if err != nil {
		return err
	}

	cfg, err := a.config(path)
	if err != nil {
		return err
	}

	step("FINAL CONFIRMATION")
	summary := fmt.Sprintf(
		"RPC: %s\nAPI: %s\nModel: %s (temperature %s)\nPrivacy token: %s\nListen: %s\n",
		strings.Join(cfg.RPCURLs, ", "), cfg.LLM.APIURL, cfg.LLM.Model, a.temperature, cfg.PrivacyToken, cfg.ListenAddr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	if err := writeConfig(path, cfg); err != nil {
		return err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nRun again with --config %s", path, path)))
	return nil
}

// config converts the answers into a validated configuration.
func (a answers) config(path string) (config.Config, error) {
	cfg := config.Default()
	cfg.Path = path

	if err := validateRPCList(a.rpcURLs); err != nil {
		return config.Config{}, err
	}
	cfg.RPCURLs = lo.Uniq(lo.Compact(lo.Map(strings.Split(a.rpcURLs, ","), func(u string, _ int) string {
		return strings.TrimSpace(u)
	})))

	cfg.LLM.APIURL = strings.TrimSpace(a.apiURL)
	cfg.LLM.Model = strings.TrimSpace(a.model)

	temperature, err := strconv.ParseFloat(strings.TrimSpace(a.temperature), 64)
	if err != nil {
		return config.Config{}, fmt.Errorf("temperature must be a number")
	}
	cfg.LLM.Temperature = temperature

	bullets, err := strconv.Atoi(strings.TrimSpace(a.bullets))
	if err != nil {
		return config.Config{}, fmt.Errorf("tips per analysis must be an integer")
	}
	cfg.LLM.Bullets = bullets

	if a.privacyToken != "" {
		cfg.PrivacyToken = a.privacyToken
	}
	if listen := strings.TrimSpace(a.listen); listen != "" {
		cfg.ListenAddr = listen
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func writeConfig(path string, cfg config.Config) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

func validateRPCList(s string) error {
	count := 0
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := validateURL(part); err != nil {
			return fmt.Errorf("%s: %w", part, err)
		}
		count++
	}
	if count == 0 {
		return fmt.Errorf("at least one RPC endpoint is required")
	}
	return nil
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return fmt.Errorf("must be an absolute URL")
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		return nil
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

func validateTemperature(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(2)) {
		return fmt.Errorf("must be between 0 and 2")
	}
	return nil
}

func validateBullets(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	if n < 1 || n > 10 {
		return fmt.Errorf("must be between 1 and 10")
	}
	return nil
}

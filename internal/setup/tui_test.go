package setup

import (
	"path/filepath"
	"testing"

	"github.com/privacyx/guardian/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswers_Config(t *testing.T) {
	a := defaultAnswers()
	a.rpcURLs = " https://eth.llamarpc.com, https://rpc.ankr.com/eth ,https://eth.llamarpc.com"
	a.model = "gpt-4o-mini"
	a.temperature = "0.2"
	a.bullets = "5"
	a.privacyToken = "DAI"
	a.listen = "127.0.0.1:9000"

	cfg, err := a.config("out.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://eth.llamarpc.com", "https://rpc.ankr.com/eth"}, cfg.RPCURLs)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, 5, cfg.LLM.Bullets)
	assert.Equal(t, "DAI", cfg.PrivacyToken)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, "out.yaml", cfg.Path)
}

func TestAnswers_ConfigRejectsInvalid(t *testing.T) {
	a := defaultAnswers()
	a.rpcURLs = " , "
	_, err := a.config("out.yaml")
	assert.Error(t, err)

	a = defaultAnswers()
	a.temperature = "warm"
	_, err = a.config("out.yaml")
	assert.Error(t, err)

	a = defaultAnswers()
	a.temperature = "3"
	_, err = a.config("out.yaml")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardian.yaml")
	cfg, err := defaultAnswers().config(path)
	require.NoError(t, err)

	require.NoError(t, writeConfig(path, cfg))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.RPCURLs, loaded.RPCURLs)
	assert.Equal(t, cfg.LLM, loaded.LLM)
	assert.Equal(t, cfg.Tokens, loaded.Tokens)
	assert.Equal(t, cfg.PrivacyToken, loaded.PrivacyToken)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateURL("https://ethereum-rpc.publicnode.com"))
	assert.NoError(t, validateURL("wss://mainnet.example.org/ws"))
	assert.Error(t, validateURL("ethereum-rpc.publicnode.com"))
	assert.Error(t, validateURL("ftp://example.org"))

	assert.NoError(t, validateTemperature("0"))
	assert.NoError(t, validateTemperature("2"))
	assert.Error(t, validateTemperature("-0.1"))
	assert.Error(t, validateTemperature("abc"))

	assert.NoError(t, validateBullets("3"))
	assert.Error(t, validateBullets("0"))
	assert.Error(t, validateBullets("x"))
}

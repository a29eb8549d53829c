// Package config loads the explicit, validated configuration shared by the
// deploy and measure commands.
package config

import (
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/weiihann/assetbench/chain"
)

var (
	ErrConfig = errors.New("configuration error")
)

// Network identifiers known out of the box.
const (
	NetworkSepolia = "sepolia"
	NetworkAmoy    = "amoy"
)

type Configuration struct {
	LogLevel     string             `mapstructure:"log_level"`
	LogFormat    string             `mapstructure:"log_format"`
	ArtifactsDir string             `mapstructure:"artifacts_dir"`
	Keys         Keys               `mapstructure:"keys"`
	Networks     map[string]Network `mapstructure:"networks"`
	Workflow     Workflow           `mapstructure:"workflow"`
}

// Keys holds the hex private keys of the three roles.
type Keys struct {
	Admin      string `mapstructure:"admin"`
	Technician string `mapstructure:"technician"`
	User       string `mapstructure:"user"`
}

// Network is the per-network connection and deployment state.
type Network struct {
	Name           string `mapstructure:"name"`
	RPCURL         string `mapstructure:"rpc_url"`
	AssetManager   string `mapstructure:"asset_manager_address"`
	PaymentManager string `mapstructure:"payment_manager_address"`
	Currency       string `mapstructure:"currency"`
}

// Workflow parameterizes the fault and maintenance steps of a benchmark run.
type Workflow struct {
	AssetID          uint64 `mapstructure:"asset_id"`
	FaultDescription string `mapstructure:"fault_description"`
	StartComment     string `mapstructure:"start_comment"`
	CompleteComment  string `mapstructure:"complete_comment"`
}

// envBindings maps configuration keys to the environment variables the
// deployment scripts have always used.
var envBindings = map[string]string{
	"log_level":     "LOG_LEVEL",
	"log_format":    "LOG_FORMAT",
	"artifacts_dir": "ARTIFACTS_DIR",

	"keys.admin":      "ADMIN_KEY",
	"keys.technician": "TECH_KEY",
	"keys.user":       "USER_KEY",

	"workflow.asset_id":          "WORKFLOW_ASSET_ID",
	"workflow.fault_description": "WORKFLOW_FAULT_DESCRIPTION",
	"workflow.start_comment":     "WORKFLOW_START_COMMENT",
	"workflow.complete_comment":  "WORKFLOW_COMPLETE_COMMENT",
}

func init() {
	for _, id := range []string{NetworkSepolia, NetworkAmoy} {
		prefix := strings.ToUpper(id)
		base := "networks." + id + "."

		envBindings[base+"rpc_url"] = prefix + "_RPC_URL"
		envBindings[base+"asset_manager_address"] = prefix + "_ASSET_MANAGER_ADDRESS"
		envBindings[base+"payment_manager_address"] = prefix + "_PAYMENT_MANAGER_ADDRESS"
		envBindings[base+"currency"] = prefix + "_CURRENCY"
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("artifacts_dir", "artifacts")

	v.SetDefault("networks.sepolia.name", "Ethereum Sepolia")
	v.SetDefault("networks.sepolia.currency", "ETH")
	v.SetDefault("networks.amoy.name", "Polygon Amoy")
	v.SetDefault("networks.amoy.currency", "POL")

	v.SetDefault("workflow.asset_id", 0)
	v.SetDefault("workflow.fault_description", "Overheat issue")
	v.SetDefault("workflow.start_comment", "Beginning maintenance")
	v.SetDefault("workflow.complete_comment", "Maintenance completed")
}

// Load reads configuration from, in increasing precedence: defaults, the
// dotenv file at envFile (ignored when absent), the YAML file at cfgFilePath
// (optional) and the process environment.
func Load(cfgFilePath, envFile string) (*Configuration, error) {
	v := viper.New()
	cfg := &Configuration{}

	setDefaults(v)

	if err := readEnvFile(v, envFile); err != nil {
		return nil, err
	}

	if err := envBindVars(v); err != nil {
		return nil, err
	}

	if err := readInFile(v, cfgFilePath); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(ErrConfig, "unmarshal: "+err.Error())
	}

	for id, n := range cfg.Networks {
		if n.Name == "" {
			n.Name = id
		}

		cfg.Networks[id] = n
	}

	return cfg, nil
}

func readInFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}

	fh, err := os.Open(path)
	if err != nil {
		return errors.Wrap(ErrConfig, err.Error())
	}
	defer fh.Close()

	v.SetConfigType("yaml")

	if err = v.ReadConfig(fh); err != nil {
		return errors.Wrap(ErrConfig, "ReadConfig error:"+err.Error())
	}

	return nil
}

// readEnvFile loads a dotenv file as low-precedence defaults for the bound
// environment variables.
func readEnvFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	ev := viper.New()
	ev.SetConfigFile(path)
	ev.SetConfigType("env")

	if err := ev.ReadInConfig(); err != nil {
		return errors.Wrap(ErrConfig, "read env file: "+err.Error())
	}

	for key, env := range envBindings {
		name := strings.ToLower(env)
		if ev.IsSet(name) {
			v.SetDefault(key, ev.Get(name))
		}
	}

	return nil
}

func envBindVars(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return errors.Wrap(ErrConfig, "env var bind error: "+err.Error())
		}
	}

	return nil
}

// NetworkIDs returns the configured network identifiers in sorted order.
func (cfg *Configuration) NetworkIDs() []string {
	ids := make([]string, 0, len(cfg.Networks))
	for id := range cfg.Networks {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// RoleKeys returns the configured keys indexed by role, omitting empty ones.
func (k Keys) RoleKeys() map[chain.Role]string {
	keys := make(map[chain.Role]string, 3)

	for role, key := range map[chain.Role]string{
		chain.RoleAdmin:      k.Admin,
		chain.RoleTechnician: k.Technician,
		chain.RoleUser:       k.User,
	} {
		if key != "" {
			keys[role] = key
		}
	}

	return keys
}

// Network returns the network with the given id.
func (cfg *Configuration) Network(id string) (Network, error) {
	n, ok := cfg.Networks[id]
	if !ok {
		return Network{}, errors.Wrapf(ErrConfig, "unknown network %q (configured: %s)",
			id, strings.Join(cfg.NetworkIDs(), ", "))
	}

	return n, nil
}

// ValidateDeploy checks everything the deploy command needs for network id.
func (cfg *Configuration) ValidateDeploy(id string) error {
	n, err := cfg.Network(id)
	if err != nil {
		return err
	}

	if n.RPCURL == "" {
		return errors.Wrapf(ErrConfig, "network %s: no rpc url", id)
	}

	if cfg.Keys.Admin == "" {
		return errors.Wrap(ErrConfig, "no admin key")
	}

	if err := validateKey(chain.RoleAdmin, cfg.Keys.Admin); err != nil {
		return err
	}

	if cfg.ArtifactsDir == "" {
		return errors.Wrap(ErrConfig, "no artifacts dir")
	}

	return nil
}

// ValidateMeasure checks everything the measure command needs for the
// given networks.
func (cfg *Configuration) ValidateMeasure(ids []string) error {
	if len(ids) == 0 {
		return errors.Wrap(ErrConfig, "no networks selected")
	}

	missing := []string{}
	if cfg.Keys.Admin == "" {
		missing = append(missing, "admin")
	}
	if cfg.Keys.Technician == "" {
		missing = append(missing, "technician")
	}
	if cfg.Keys.User == "" {
		missing = append(missing, "user")
	}

	if len(missing) > 0 {
		return errors.Wrap(ErrConfig, "missing keys: "+strings.Join(missing, ", "))
	}

	for role, key := range cfg.Keys.RoleKeys() {
		if err := validateKey(role, key); err != nil {
			return err
		}
	}

	for _, id := range ids {
		n, err := cfg.Network(id)
		if err != nil {
			return err
		}

		if n.RPCURL == "" {
			return errors.Wrapf(ErrConfig, "network %s: no rpc url", id)
		}

		if !common.IsHexAddress(n.AssetManager) {
			return errors.Wrapf(ErrConfig, "network %s: invalid asset manager address %q", id, n.AssetManager)
		}
	}

	return nil
}

// validateKey checks that key parses as a secp256k1 private key, with or
// without a 0x prefix.
func validateKey(role chain.Role, key string) error {
	key = strings.TrimPrefix(strings.TrimSpace(key), "0x")

	if _, err := crypto.HexToECDSA(key); err != nil {
		return errors.Wrapf(ErrConfig, "%s key: %s", role, err.Error())
	}

	return nil
}

package server

// HTTPServerConfig holds the catalog API listener configuration
type HTTPServerConfig struct {
	Address      string `mapstructure:"address"       yaml:"address"`
	ReadTimeout  string `mapstructure:"read_timeout"  yaml:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout" yaml:"write_timeout"`
	Metrics      bool   `mapstructure:"metrics"       yaml:"metrics"`
}

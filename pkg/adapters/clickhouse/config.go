package clickhouse

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-viper/mapstructure/v2"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/core"
	base "github.com/leapstack-labs/clickhouse-dialect/pkg/datatypes"
)

// Connection defaults.
const (
	DefaultHost       = "localhost"
	DefaultPort       = 8123
	DefaultNativePort = 9000
	DefaultDatabase   = "default"
	DefaultUser       = "default"
)

// Params holds ClickHouse-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Protocol is "http" (default) or "native".
	Protocol string `mapstructure:"protocol"`

	// Secure enables TLS.
	Secure bool `mapstructure:"secure"`

	// Compression method: "lz4", "zstd", "gzip", "deflate", "br" or "none".
	Compression string `mapstructure:"compression"`

	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	// Settings are sent with every query (e.g. max_execution_time).
	Settings map[string]any `mapstructure:"settings"`

	// SupportBigNumbers keeps Int64, UInt64, Decimal and wider values exact.
	// When false they decode as float64.
	SupportBigNumbers bool `mapstructure:"support_big_numbers"`

	// BigNumberStrings decodes the same values as strings.
	BigNumberStrings bool `mapstructure:"big_number_strings"`

	// Ping verifies the connection on Connect.
	Ping bool `mapstructure:"ping"`

	// InsertBatchSize is the number of rows per INSERT when loading files.
	InsertBatchSize int `mapstructure:"insert_batch_size"`

	// InsertConcurrency bounds the INSERTs in flight when loading files.
	InsertConcurrency int `mapstructure:"insert_concurrency"`
}

func defaultParams() Params {
	return Params{
		Protocol:          "http",
		SupportBigNumbers: true,
		Ping:              true,
		InsertBatchSize:   1000,
		InsertConcurrency: 1,
	}
}

// parseParams decodes adapter params over the defaults.
func parseParams(params map[string]any) (Params, error) {
	p := defaultParams()
	if len(params) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(params); err != nil {
		return p, fmt.Errorf("invalid clickhouse params: %w", err)
	}
	if p.InsertBatchSize < 1 || p.InsertConcurrency < 1 {
		return p, fmt.Errorf("invalid clickhouse params: insert_batch_size and insert_concurrency must be positive")
	}
	return p, nil
}

var compressionMethods = map[string]ch.CompressionMethod{
	"none":    ch.CompressionNone,
	"lz4":     ch.CompressionLZ4,
	"zstd":    ch.CompressionZSTD,
	"gzip":    ch.CompressionGZIP,
	"deflate": ch.CompressionDeflate,
	"br":      ch.CompressionBrotli,
}

// settings holds the resolved connection configuration.
type settings struct {
	options  *ch.Options
	params   Params
	timezone string
}

// connectionOptions translates an adapter config into client options,
// filling in the ClickHouse defaults.
func connectionOptions(cfg core.AdapterConfig) (*settings, error) {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return nil, err
	}

	host, port, database, user, password := cfg.Host, cfg.Port, cfg.Database, cfg.Username, cfg.Password
	secure := params.Secure

	if strings.Contains(host, "://") {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid clickhouse url: %w", err)
		}
		switch u.Scheme {
		case "http":
		case "https":
			secure = true
		case "clickhouse", "tcp":
			params.Protocol = "native"
		default:
			return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
		}
		host = u.Hostname()
		if port == 0 && u.Port() != "" {
			if port, err = strconv.Atoi(u.Port()); err != nil {
				return nil, fmt.Errorf("invalid port in url: %w", err)
			}
		}
		if database == "" {
			database = strings.Trim(u.Path, "/")
		}
		if user == "" && u.User != nil {
			user = u.User.Username()
			password, _ = u.User.Password()
		}
	}

	protocol := ch.HTTP
	switch strings.ToLower(params.Protocol) {
	case "", "http":
	case "native", "tcp":
		protocol = ch.Native
	default:
		return nil, fmt.Errorf("unsupported protocol %q", params.Protocol)
	}

	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
		if protocol == ch.Native {
			port = DefaultNativePort
		}
	}
	if database == "" {
		database = DefaultDatabase
	}
	if user == "" {
		user = DefaultUser
	}

	timezone := cfg.Timezone
	if timezone == "" {
		timezone = base.DefaultTimezone
	}
	if _, err := base.Location(timezone); err != nil {
		return nil, err
	}

	opts := &ch.Options{
		Protocol: protocol,
		Addr:     []string{net.JoinHostPort(host, strconv.Itoa(port))},
		Auth: ch.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
		Debug:           cfg.Debug,
		DialTimeout:     params.DialTimeout,
		ReadTimeout:     params.ReadTimeout,
		MaxOpenConns:    params.MaxOpenConns,
		MaxIdleConns:    params.MaxIdleConns,
		ConnMaxLifetime: params.ConnMaxLifetime,
	}
	if secure {
		opts.TLS = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	}

	if len(params.Settings) > 0 || len(cfg.Options) > 0 {
		opts.Settings = ch.Settings{}
		for k, v := range cfg.Options {
			opts.Settings[k] = v
		}
		for k, v := range params.Settings {
			opts.Settings[k] = v
		}
	}

	if params.Compression != "" {
		method, ok := compressionMethods[strings.ToLower(params.Compression)]
		if !ok {
			return nil, fmt.Errorf("unsupported compression %q", params.Compression)
		}
		opts.Compression = &ch.Compression{Method: method}
	}

	return &settings{options: opts, params: params, timezone: timezone}, nil
}

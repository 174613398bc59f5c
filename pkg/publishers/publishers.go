package publishers

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samvad-hq/bacon-oracle/internal/regfile"
)

const (
	// Supported publisher types.
	TypeHTTP      = "http"
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcp_pubsub"
	TypeNeo4j     = "neo4j"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// configFile represents the structure of the publishers configuration file.
type configFile struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig represents a single publisher entry declared in config files.
type PublisherConfig struct {
	ID        string                `json:"id" yaml:"id"`
	Type      string                `json:"type" yaml:"type"`
	Enabled   *bool                 `json:"enabled" yaml:"enabled"`
	HTTP      *HTTPPublisherConfig  `json:"http" yaml:"http"`
	SQS       *SQSPublisherConfig   `json:"sqs" yaml:"sqs"`
	SNS       *SNSPublisherConfig   `json:"sns" yaml:"sns"`
	GCPPubSub *GCPPubSubConfig      `json:"gcp_pubsub" yaml:"gcp_pubsub"`
	Neo4j     *Neo4jPublisherConfig `json:"neo4j" yaml:"neo4j"`
}

// HTTPPublisherConfig holds generic HTTP sink settings.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// AWSAccess overrides the default AWS credential chain and endpoint, e.g. for LocalStack.
type AWSAccess struct {
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// SQSPublisherConfig holds AWS SQS specific settings.
type SQSPublisherConfig struct {
	QueueURL  string `json:"uri" yaml:"uri"`
	Region    string `json:"region" yaml:"region"`
	AWSAccess `yaml:",inline"`
}

// SNSPublisherConfig holds AWS SNS specific settings.
type SNSPublisherConfig struct {
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
	Region    string `json:"region" yaml:"region"`
	AWSAccess `yaml:",inline"`
}

// GCPPubSubConfig holds Google Cloud Pub/Sub settings. Endpoint is optional.
type GCPPubSubConfig struct {
	ProjectID string `json:"project_id" yaml:"project_id"`
	Topic     string `json:"topic" yaml:"topic"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
}

// Neo4jPublisherConfig holds graph database settings.
type Neo4jPublisherConfig struct {
	URI      string `json:"uri" yaml:"uri"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
}

// ConfigRegistry materializes publisher definitions loaded from config files.
type ConfigRegistry struct {
	mu         sync.RWMutex
	publishers []PublisherConfig
	idx        map[string]PublisherConfig
}

// LoadRegistry loads the publisher registry from a YAML/JSON file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	fileReg, err := regfile.Load[configFile](path, "publishers")
	if err != nil {
		return nil, err
	}
	if len(fileReg.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	reg := &ConfigRegistry{
		publishers: make([]PublisherConfig, len(fileReg.Publishers)),
		idx:        make(map[string]PublisherConfig, len(fileReg.Publishers)),
	}

	for i := range fileReg.Publishers {
		cfg := sanitizePublisherConfig(fileReg.Publishers[i])
		if err := validatePublisherConfig(cfg); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		reg.publishers[i] = cfg
		reg.idx[cfg.ID] = cfg
	}

	return reg, nil
}

// settings is implemented by every per-type block of a PublisherConfig.
type settings interface {
	normalize()
	validate() error
}

// settingsPtr constrains P to a pointer to a settings block.
type settingsPtr[T any] interface {
	*T
	settings
}

// normalized returns a trimmed copy of block, leaving the caller's value untouched.
func normalized[T any, P settingsPtr[T]](block P) P {
	if block == nil {
		return nil
	}
	c := *block
	out := P(&c)
	out.normalize()
	return out
}

// present converts block to settings, mapping a nil pointer to a nil interface.
func present[T any, P settingsPtr[T]](block P) settings {
	if block == nil {
		return nil
	}
	return block
}

// sanitizePublisherConfig trims every field and fills defaults.
func sanitizePublisherConfig(cfg PublisherConfig) PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}

	cfg.HTTP = normalized(cfg.HTTP)
	cfg.SQS = normalized(cfg.SQS)
	cfg.SNS = normalized(cfg.SNS)
	cfg.GCPPubSub = normalized(cfg.GCPPubSub)
	cfg.Neo4j = normalized(cfg.Neo4j)
	return cfg
}

// validatePublisherConfig checks the block selected by Type.
func validatePublisherConfig(cfg PublisherConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.Type == "" {
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	}

	block, known := cfg.settingsFor()
	switch {
	case !known:
		return fmt.Errorf("unsupported type %q for publisher %q", cfg.Type, cfg.ID)
	case block == nil:
		return fmt.Errorf("%s config required for publisher %q", cfg.Type, cfg.ID)
	}
	if err := block.validate(); err != nil {
		return fmt.Errorf("%w for publisher %q", err, cfg.ID)
	}
	return nil
}

func (cfg PublisherConfig) settingsFor() (settings, bool) {
	switch cfg.Type {
	case TypeHTTP:
		return present(cfg.HTTP), true
	case TypeSQS:
		return present(cfg.SQS), true
	case TypeSNS:
		return present(cfg.SNS), true
	case TypeGCPPubSub:
		return present(cfg.GCPPubSub), true
	case TypeNeo4j:
		return present(cfg.Neo4j), true
	}
	return nil, false
}

func (c *HTTPPublisherConfig) normalize() {
	trimAll(&c.URL)
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = httpDefaultMethod
	}
	c.Headers = sanitizeHeaders(c.Headers)
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = httpDefaultTimeoutSeconds
	}
}

func (c *HTTPPublisherConfig) validate() error {
	return requireFields(field{"http.url", c.URL})
}

func (c *SQSPublisherConfig) normalize() {
	trimAll(&c.QueueURL, &c.Region)
	c.AWSAccess.normalize()
}

func (c *SQSPublisherConfig) validate() error {
	if err := requireFields(field{"sqs.uri", c.QueueURL}, field{"sqs.region", c.Region}); err != nil {
		return err
	}
	return c.AWSAccess.validate("sqs")
}

func (c *SNSPublisherConfig) normalize() {
	trimAll(&c.TopicARN, &c.Region)
	c.AWSAccess.normalize()
}

func (c *SNSPublisherConfig) validate() error {
	if err := requireFields(field{"sns.topic_arn", c.TopicARN}, field{"sns.region", c.Region}); err != nil {
		return err
	}
	return c.AWSAccess.validate("sns")
}

func (c *GCPPubSubConfig) normalize() {
	trimAll(&c.ProjectID, &c.Topic, &c.Endpoint)
}

func (c *GCPPubSubConfig) validate() error {
	return requireFields(field{"gcp_pubsub.project_id", c.ProjectID}, field{"gcp_pubsub.topic", c.Topic})
}

// normalize leaves the password as written.
func (c *Neo4jPublisherConfig) normalize() {
	trimAll(&c.URI, &c.Username, &c.Database)
}

func (c *Neo4jPublisherConfig) validate() error {
	return requireFields(field{"neo4j.uri", c.URI})
}

func (a *AWSAccess) normalize() {
	trimAll(&a.Endpoint, &a.AccessKeyID, &a.SecretAccessKey)
}

// validate requires static keys to come in pairs.
func (a AWSAccess) validate(prefix string) error {
	if (a.AccessKeyID == "") != (a.SecretAccessKey == "") {
		return fmt.Errorf("%[1]s.access_key_id and %[1]s.secret_access_key must be set together", prefix)
	}
	return nil
}

type field struct {
	key   string
	value string
}

func requireFields(fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%s is required", f.key)
		}
	}
	return nil
}

func trimAll(values ...*string) {
	for _, v := range values {
		*v = strings.TrimSpace(*v)
	}
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ByID returns the publisher config by id.
func (r *ConfigRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return PublisherConfig{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[id]
	return cfg, ok
}

// All returns all configured publishers.
func (r *ConfigRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PublisherConfig, len(r.publishers))
	copy(out, r.publishers)
	return out
}

// Enabled returns publishers that are enabled.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	if r == nil {
		return nil
	}

	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]PublisherConfig, 0, len(all))
	for _, cfg := range all {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg PublisherConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}

package config

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"oss.nandlabs.io/taskqueue/codec"
	"oss.nandlabs.io/taskqueue/fsutils"
)

// JSONConfiguration is a Configuration backed by a flat object of string
// values, using the codec package for encoding/decoding. Unlike
// Properties it does not support variable interpolation; it is meant for
// small, fixed configuration files such as config.json. Despite the name,
// its wire format isn't fixed to JSON: NewJSONConfigurationForPath picks the
// codec from the target path's extension, so a config.yaml or config.xml is
// read and written in kind.
type JSONConfiguration struct {
	values map[string]string
	codec  codec.Codec
	mutex  sync.RWMutex
}

// NewJSONConfiguration creates an empty JSONConfiguration that reads and
// writes plain JSON, for callers with no file path to derive a format from.
func NewJSONConfiguration() *JSONConfiguration {
	return &JSONConfiguration{
		values: make(map[string]string),
		codec:  codec.JsonCodec(),
	}
}

// NewJSONConfigurationForPath creates an empty JSONConfiguration whose
// Load/Save use the codec selected by fsutils.LookupContentType(path) —
// JSON, YAML, or XML depending on the file's extension.
func NewJSONConfigurationForPath(path string) (*JSONConfiguration, error) {
	c, err := codec.GetDefault(fsutils.LookupContentType(path))
	if err != nil {
		return nil, err
	}
	return &JSONConfiguration{
		values: make(map[string]string),
		codec:  c,
	}, nil
}

// Load reads a flat object of string values from r using the configured codec.
func (j *JSONConfiguration) Load(r io.Reader) error {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	values := make(map[string]string)
	if err := j.codec.Read(r, &values); err != nil {
		return err
	}
	j.values = values
	return nil
}

// Save writes the current values to w using the configured codec.
func (j *JSONConfiguration) Save(w io.Writer) error {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	return j.codec.Write(j.values, w)
}

// Get returns the string value for k, or defaultVal if absent.
func (j *JSONConfiguration) Get(k, defaultVal string) string {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	if v, ok := j.values[k]; ok {
		return v
	}
	return defaultVal
}

// GetAsInt returns the value for k parsed as int, or defaultVal if absent.
func (j *JSONConfiguration) GetAsInt(k string, defaultVal int) (int, error) {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	if v, ok := j.values[k]; ok {
		return strconv.Atoi(v)
	}
	return defaultVal, nil
}

// GetAsInt64 returns the value for k parsed as int64, or defaultVal if absent.
func (j *JSONConfiguration) GetAsInt64(k string, defaultVal int64) (int64, error) {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	if v, ok := j.values[k]; ok {
		return strconv.ParseInt(v, 10, 64)
	}
	return defaultVal, nil
}

// GetAsBool returns the value for k parsed as bool, or defaultVal if absent.
func (j *JSONConfiguration) GetAsBool(k string, defaultVal bool) (bool, error) {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	if v, ok := j.values[k]; ok {
		return strconv.ParseBool(v)
	}
	return defaultVal, nil
}

// GetAsDecimal returns the value for k parsed as float64, or defaultVal if absent.
func (j *JSONConfiguration) GetAsDecimal(k string, defaultVal float64) (float64, error) {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	if v, ok := j.values[k]; ok {
		return strconv.ParseFloat(v, 64)
	}
	return defaultVal, nil
}

// Put sets k to the string value v and returns the previous value, if any.
func (j *JSONConfiguration) Put(k, v string) string {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	old := j.values[k]
	j.values[k] = v
	return old
}

// PutInt sets k to v formatted as a string and returns the previous value
// parsed as int.
func (j *JSONConfiguration) PutInt(k string, v int) (int, error) {
	return putParsed(j, k, strconv.Itoa(v), func(s string) (int, error) { return strconv.Atoi(s) })
}

// PutInt64 sets k to v formatted as a string and returns the previous value
// parsed as int64.
func (j *JSONConfiguration) PutInt64(k string, v int64) (int64, error) {
	return putParsed(j, k, strconv.FormatInt(v, 10), func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

// PutBool sets k to v formatted as a string and returns the previous value
// parsed as bool.
func (j *JSONConfiguration) PutBool(k string, v bool) (bool, error) {
	return putParsed(j, k, strconv.FormatBool(v), strconv.ParseBool)
}

// PutDecimal sets k to v formatted as a string and returns the previous
// value parsed as float64.
func (j *JSONConfiguration) PutDecimal(k string, v float64) (float64, error) {
	return putParsed(j, k, fmt.Sprintf("%f", v), func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func putParsed[T any](j *JSONConfiguration, k, formatted string, parse func(string) (T, error)) (T, error) {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	var old T
	var err error
	if oldStr, ok := j.values[k]; ok {
		old, err = parse(oldStr)
	}
	j.values[k] = formatted
	return old, err
}

// Keys returns all keys currently present, in no particular order.
func (j *JSONConfiguration) Keys() []string {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	keys := make([]string, 0, len(j.values))
	for k := range j.values {
		keys = append(keys, k)
	}
	return keys
}

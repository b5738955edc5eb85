// Package objstore implements core.ObjectStore on Aliyun OSS or in process memory.
package objstore

import (
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
)

// NewStore picks the store named by conf.Storage.Driver.
func NewStore(conf *core.Config) (core.ObjectStore, error) {
	switch conf.Storage.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "oss":
		return NewOSSStore(conf.Storage)
	default:
		return nil, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
}

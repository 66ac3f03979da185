package config

import "sync"

type StorageConfig struct {
	Root      string
	PublicURL string
}

var (
	storageConfig *StorageConfig
	storageOnce   sync.Once
)

func LoadStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		storageConfig = &StorageConfig{
			Root:      getEnvWithDefault("STORAGE_ROOT", "./uploads"),
			PublicURL: getEnvWithDefault("STORAGE_PUBLIC_URL", "http://localhost:8080/storage"),
		}
	})
	return storageConfig
}

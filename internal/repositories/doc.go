// Package repositories implements persistence for the player.
//
// Key Implementations:
//   - [SettingRepository] : SQLite key-value settings (the persisted track choice)
//   - [RedisStore] : the same key-value contract over redis
//   - [MemoryStore] : process-local key-value store
//   - [UploadRepository] : upload history with revocation timestamps
//
// [OpenStore] picks the key-value backend from configuration.
package repositories

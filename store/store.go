// Package store 提供 core.Store / core.KeyValueStore 的实现：
//   - MemoryStore：进程内存，测试/开发/单机部署
//   - RedisStore：go-redis，多实例共享目录快照
//
// catalog.StoreSource 基于这些实现读写目录与交互数据。
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	src := catalog.NewStoreSource(kv, "catalogrec")
package store

import "github.com/rushteam/catalogrec/core"

// ErrNotFound 是 core.ErrStoreNotFound 的别名，便于包内使用。
var ErrNotFound = core.ErrStoreNotFound

// Package mocks 测试用的内存实现
//
// Store同时实现card.Repository、set.Repository、set.CollectionCountRepository、
// inventory.Repository和inventory.TxManager,用例测试与handler测试共用一份数据。
// 各实现都可以通过Err字段注入错误。
package mocks

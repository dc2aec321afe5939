package contract

import "oracframe/pkg/header"

// HeaderComponent: 容器内管理性头组件名，不计入子帧。
const HeaderComponent = "HEADER"

// Container: 已打开的容器（HDS 组件树 / FITS 多扩展）。
// Header("") 返回容器级主头。
type Container interface {
	Children() []string
	Header(name string) (header.Raw, error)
	Close() error
}

// Store: 容器 I/O 协作方。实现负责文件格式；核心只经此窄接口访问磁盘。
// 约束：单次失败立即返回，不重试。
type Store interface {
	Open(path string) (Container, error)
	Create(path, typ string) error
	CopyComponent(src, dst, name string) error
	EraseComponent(path, name string) error
	Exists(path string) bool
	// Suffix 为该格式的文件后缀（".sdf" / ".fits"）。
	Suffix() string
}

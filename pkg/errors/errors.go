package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrCellTaken 数据库唯一约束命中：该时段已有同类型排课
var ErrCellTaken = errors.New("该时段已被占用")

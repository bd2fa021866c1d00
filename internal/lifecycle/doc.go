// Package lifecycle 课题生命周期与登记会话的纯规则。
//
// 本包不访问数据库：调用方在事务内读取（并加锁）相关记录，
// 交由这里判断转换是否合法、生成成员变更计划，再执行写入。
package lifecycle

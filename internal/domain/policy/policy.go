// Package policy は誰が何をしてよいかを決める純粋関数の集まり。
// I/Oは持たない。
package policy

import "posapp/internal/domain/model"

// Caller はリクエストしてきた認証済みユーザー
type Caller struct {
	ID       string
	Username string
	Role     model.Role
}

// 取引に関係なく他人の取引を扱えるロール
func isSupervisor(r model.Role) bool {
	return r == model.RoleManager || r == model.RoleAdmin
}

// CanEdit は pending の取引を、販売者本人か manager/admin だけが編集できる
func CanEdit(tx model.Transaction, caller Caller) bool {
	if tx.Status != model.TransactionStatusPending {
		return false
	}
	return caller.ID == tx.SellerID || isSupervisor(caller.Role)
}

func CanFinalize(tx model.Transaction, caller Caller) bool { return CanEdit(tx, caller) }

func CanCancel(tx model.Transaction, caller Caller) bool { return CanEdit(tx, caller) }

// 商品登録と在庫調整
func CanManageCatalog(caller Caller) bool { return isSupervisor(caller.Role) }

// ユーザー管理はadminのみ
func CanManageUsers(caller Caller) bool { return caller.Role == model.RoleAdmin }

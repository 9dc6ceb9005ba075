package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// 在庫がマイナスになる調整は拒否
	ErrOutOfStock = errors.New("out of stock")
)

package database

import "errors"

var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("record not found")

	// ErrCellOccupied ячейка уже занята активной арендой.
	ErrCellOccupied = errors.New("cell is already occupied")

	// ErrCellHasRentals ячейку нельзя удалить, пока на нее ссылаются аренды.
	ErrCellHasRentals = errors.New("cell is referenced by rentals")

	// ErrCustomerHasRentals клиента нельзя удалить при активных арендах.
	ErrCustomerHasRentals = errors.New("customer has active rentals")

	// ErrRentalNotActive операция применима только к активной аренде.
	ErrRentalNotActive = errors.New("rental is not active")

	// ErrTokenInvalid код входа не существует, просрочен или уже использован.
	ErrTokenInvalid = errors.New("auth token is invalid")

	// ErrInvalidMonths срок аренды задан меньше одного месяца.
	ErrInvalidMonths = errors.New("months must be at least 1")

	// ErrInvalidInput обязательные поля не заполнены или заполнены неверно.
	ErrInvalidInput = errors.New("invalid input")
)

package domain

import "errors"

// Таксономия ошибок ядра. Хендлеры маппят их на HTTP-статусы:
// ErrNotFound -> 404, остальные Err* валидации -> 400, всё прочее -> 500.
var (
	// ErrNotFound — целевая сущность отсутствует при чтении/обновлении/удалении.
	ErrNotFound = errors.New("entity not found")

	// ErrEmailTaken — email робота уже занят другим роботом.
	ErrEmailTaken = errors.New("email already exists in the list of robots")

	// ErrUserTaken — username или email пользователя уже заняты.
	ErrUserTaken = errors.New("username or email already in use")

	// ErrRobotMissing — задача ссылается на несуществующего робота.
	ErrRobotMissing = errors.New("the robot that was assigned to this task does not exist")

	// ErrNothingToUpdate — пришел пустой patch.
	ErrNothingToUpdate = errors.New("nothing to update")

	// ErrEmptyPopulation — генератору не из чего выбрать FK (таблица пуста).
	// Цикл логируется и пропускается, ошибка наружу не течет.
	ErrEmptyPopulation = errors.New("no rows to sample from")
)

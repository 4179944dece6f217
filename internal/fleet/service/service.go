package service

// Publisher — контракт брокастера для CRUD-слоя. Каждый успешный
// create/update/delete обязан отдать пост-состояние сущности сюда;
// чтения не публикуют ничего.
type Publisher interface {
	Publish(kind, action string, entity interface{})
}

// NopPublisher — заглушка для инстансов без realtime-канала и для тестов.
type NopPublisher struct{}

func (NopPublisher) Publish(kind, action string, entity interface{}) {}

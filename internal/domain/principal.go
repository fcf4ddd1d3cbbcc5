package domain

// Role роль аутентифицированного принципала
type Role string

const (
	RoleUser  Role = "user"
	RoleSalon Role = "salon"
)

// Principal аутентифицированный субъект запроса.
// Проверку учетных данных выполняет внешний auth-сервис; сюда личность
// приходит уже проверенной и повторно не верифицируется.
type Principal struct {
	ID   int64
	Role Role
}

// IsUser возвращает true для принципала-клиента
func (p Principal) IsUser() bool {
	return p.Role == RoleUser
}

// Operates возвращает true, если принципал - оператор указанного салона
func (p Principal) Operates(salonID int64) bool {
	return p.Role == RoleSalon && p.ID == salonID
}

// Owns возвращает true, если принципал - клиент, создавший бронирование
func (p Principal) Owns(r *Reservation) bool {
	return p.Role == RoleUser && p.ID == r.UserID
}

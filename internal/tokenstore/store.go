// tokenstore хранит текущий access-токен сессии.
//
// Токен живёт только в памяти процесса: ни на диск, ни в окружение он не попадает,
// поэтому новый процесс стартует без токена и восстанавливает сессию через refresh-cookie.
// Экземпляр создаётся один раз при старте и передаётся обоим HTTP-клиентам.
package tokenstore

import "sync"

// Store — потокобезопасный слот для access-токена.
type Store struct {
	mu    sync.RWMutex
	token string
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{}
}

// Get возвращает токен и признак его наличия.
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token, s.token != ""
}

// Save перезаписывает токен. Пустая строка равносильна Remove.
func (s *Store) Save(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Remove очищает слот.
func (s *Store) Remove() {
	s.Save("")
}

package service

// Task represents a single task item.
// ID is assigned by the server and never modified by the client.
type Task struct {
	ID        string
	Title     string
	Completed bool
}

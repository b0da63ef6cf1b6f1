package action

const (
	defaultBindAddr   = "localhost:3000"
	defaultSQLitePath = "mesa.sqlite"
	defaultUploadDir  = "uploads"
)

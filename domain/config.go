package domain

// Config is the project file: where the runtimes live and which compose
// services to talk to.
type Config struct {
	Containers ContainerConfig
	Paths      PathConfig
	Checklist  []string
}

type ContainerConfig struct {
	Db    string
	WPCLI string
}

type PathConfig struct {
	Project string
	Xampp   string
	Laragon string
}

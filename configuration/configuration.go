package configuration

type Configuration struct {
	HttpAddr          string `usage:"HTTP address"`
	AuditLog          string `usage:"append audit entries to this JSON lines file"`
	EnableCompression bool   `usage:"gzip responses when the client accepts it"`
	Version           bool   `usage:"show version and exit"`
	ShowBanner        bool   `usage:"show big banner"`
	ShowConfig        bool   `usage:"print config"`
}

func Default() Configuration {
	return Configuration{
		HttpAddr:          ":8080",
		AuditLog:          "",
		EnableCompression: true,
		Version:           false,
		ShowBanner:        true,
		ShowConfig:        false,
	}
}

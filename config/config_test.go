package config

import "testing"

func validConfig() *Config {
	return &Config{
		Server:      ServerConfig{Port: 8080},
		Auth:        AuthConfig{JWTSecret: "0123456789abcdef"},
		Competition: CompetitionConfig{PasswordLength: 10},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("期望校验通过，实际: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"空密钥", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"密钥过短", func(c *Config) { c.Auth.JWTSecret = "short" }},
		{"端口为0", func(c *Config) { c.Server.Port = 0 }},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }},
		{"密码过短", func(c *Config) { c.Competition.PasswordLength = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("期望校验失败")
			}
		})
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable", Timezone: "UTC"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable TimeZone=UTC"
	if got := c.DSN(); got != want {
		t.Errorf("DSN 不符:\n got  %s\n want %s", got, want)
	}
}

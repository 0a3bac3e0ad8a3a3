package profiles

import "webup/wplocal/domain"

// commonRules are applied on every target.
func commonRules(settings domain.Settings, dbHost string, baseURL string) []domain.ConfigPatchRule {
	password := domain.DefineRule("DB_PASSWORD", domain.PHPString(settings.String("DB_PASSWORD", "")))
	password.Description = "DB_PASSWORD set"

	fileMods := domain.DefineRule("DISALLOW_FILE_MODS", domain.PHPBool(settings.Bool("DISALLOW_FILE_MODS")))
	fileMods.AppliesIf = func(s domain.Settings) bool {
		return s.Has("DISALLOW_FILE_MODS")
	}

	return []domain.ConfigPatchRule{
		domain.DefineRule("DB_HOST", domain.PHPString(dbHost)),
		domain.DefineRule("DB_NAME", domain.PHPString(settings.String("DB_NAME", ""))),
		domain.DefineRule("DB_USER", domain.PHPString(settings.String("DB_USER", ""))),
		password,
		domain.DefineRule("WP_HOME", domain.PHPString(baseURL)),
		domain.DefineRule("WP_SITEURL", domain.PHPString(baseURL)),
		domain.DefineRule("FORCE_SSL_ADMIN", "false"),
		domain.DefineRule("WP_CACHE", "false"),
		domain.DefineRule("WP_REDIS_DISABLED", "true"),
		fileMods,
	}
}

// debugRules turn the container into a development target.
func debugRules() []domain.ConfigPatchRule {
	return []domain.ConfigPatchRule{
		domain.DefineRule("WP_MEMORY_LIMIT", domain.PHPString("512M")),
		domain.DefineRule("WP_MAX_MEMORY_LIMIT", domain.PHPString("1024M")),
		domain.DefineRule("WP_DEBUG", "true"),
		domain.DefineRule("WP_DEBUG_LOG", "true"),
	}
}

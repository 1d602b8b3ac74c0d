package taxonomy

import "os"

// Config names the reference data blobs within the storage system.
type Config struct {
	CategoriesFile    string `toml:"categories_file"`
	TaxCategoriesFile string `toml:"tax_categories_file"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	CategoriesFile    string
	TaxCategoriesFile string
}

// Finalize applies defaults and environment variable overrides.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.CategoriesFile != "" {
		c.CategoriesFile = overlay.CategoriesFile
	}
	if overlay.TaxCategoriesFile != "" {
		c.TaxCategoriesFile = overlay.TaxCategoriesFile
	}
}

func (c *Config) loadDefaults() {
	if c.CategoriesFile == "" {
		c.CategoriesFile = "product_categories.json"
	}
	if c.TaxCategoriesFile == "" {
		c.TaxCategoriesFile = "tax_categories.json"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.CategoriesFile != "" {
		if v := os.Getenv(env.CategoriesFile); v != "" {
			c.CategoriesFile = v
		}
	}
	if env.TaxCategoriesFile != "" {
		if v := os.Getenv(env.TaxCategoriesFile); v != "" {
			c.TaxCategoriesFile = v
		}
	}
}

// accountctl runs account-service maintenance tasks out of band.
package main

import (
	"os"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
)

func main() {
	logger.Init()
	os.Exit(Execute())
}

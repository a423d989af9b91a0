// cmd/ledger/main.go

// ledger 指令列入口：讀取 TOML 設定建立帳本，重播操作腳本並列出帳戶與稽核軌跡。

package main

import (
	"os"

	"ledger/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

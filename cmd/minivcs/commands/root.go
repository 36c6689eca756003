package commands

import (
	"context"
	"errors"
	"fmt"

	"minivcs/pkg/app"
	"minivcs/pkg/config"
	"minivcs/pkg/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	configErr error

	// 全局应用实例，供子命令使用
	TV *app.App
)

var rootCmd = &cobra.Command{
	Use:           "minivcs",
	Short:         "minivcs: a tiny content-addressed version control system",
	SilenceUsage:  true,
	SilenceErrors: true,
	// PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		if _, err := logging.Setup(viper.GetString("log.level"), cmd.ErrOrStderr()); err != nil {
			return err
		}

		// 跳过 init 命令的依赖检查 (因为它就是去创建环境的)
		if skipApp(cmd) {
			return nil
		}

		var err error
		TV, err = app.NewApp(cmd.Context())
		if err != nil {
			return err
		}
		return nil
	},
}

// Execute 是入口
func Execute() error {
	return execute(context.Background())
}

func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if TV != nil {
		// 无论命令成功与否都释放缓存和数据库连接
		err = errors.Join(err, TV.Close())
		TV = nil
	}
	return err
}

// skipApp 判断命令是否不需要已初始化的仓库
func skipApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "init", "help":
		return true
	}
	return cmd.HasParent() && cmd.Parent().Name() == "completion"
}

func init() {
	// 在初始化时，加载配置
	cobra.OnInitialize(initConfig)

	// 1. 定义全局参数 --config
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.minivcs/config.yaml or $HOME/.minivcs/config.yaml)")

	// 2. 其余全局参数绑定到 Viper：yaml、环境变量和 flag 都能设置
	rootCmd.PersistentFlags().String("storage-path", "", "directory to store objects (default <repo>/.minivcs/objects)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	mustBind("storage.path", "storage-path")
	mustBind("log.level", "log-level")
}

func mustBind(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
	}
}

// initConfig 读取配置文件和环境变量
// 错误留到 PersistentPreRunE 里返回，保证退出码非零
func initConfig() {
	configErr = config.Load(cfgFile)
}

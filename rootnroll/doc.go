// Package rootnroll 是 Root'n'Roll 计算沙箱 REST API 的 Go 客户端。
//
// 客户端支持服务器、终端、沙箱和检查任务的创建、查询与销毁，
// 所有请求使用 HTTP Basic 鉴权，502 响应和临时网络错误会按指数退避自动重试。
//
//	client, err := rootnroll.NewClient(&rootnroll.Config{
//		Username: "user",
//		Password: "secret",
//	})
//	if err != nil {
//		return err
//	}
//	server, err := client.CreateServerAndWait(ctx, rootnroll.CreateServerParams{ImageID: "3"})
//
// 查询类方法在资源不存在（404）时返回 nil, nil；
// 等待类方法超时返回 *WaitTimeoutError，可以用 errors.Is(err, rootnroll.ErrWaitTimeout) 判断。
package rootnroll

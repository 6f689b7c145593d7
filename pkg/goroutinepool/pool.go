package goroutinepool

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Task 一个后台任务。审核调用、封禁复查等发布后的异步工作都走这里。
type Task struct {
	Name    string
	Run     func() error
	Timeout time.Duration
	// Retries 失败后的额外尝试次数。审核类任务默认不重试：
	// 上游不可用时结果保持"未审核"，重试交给人工举报通道兜底。
	Retries int
}

// Pool 固定worker数的后台任务池，队列满时拒绝而不是阻塞提交方
type Pool struct {
	queue  chan *Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	workers int

	submitted int64
	succeeded int64
	failed    int64
	rejected  int64
	inFlight  int64
}

var (
	globalPool *Pool
	poolOnce   sync.Once
)

// GetPool 获取全局任务池
func GetPool() *Pool {
	poolOnce.Do(func() {
		globalPool = NewPool(runtime.NumCPU()*2, 10000)
		globalPool.Start()
	})
	return globalPool
}

// NewPool 创建任务池
func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		queue:   make(chan *Task, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		workers: workers,
	}
}

// Start 启动所有worker
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i + 1)
	}
	log.Printf("后台任务池已启动，worker数: %d", p.workers)
}

// Stop 停止任务池，最多等30秒让在途任务跑完
func (p *Pool) Stop() {
	log.Printf("正在停止后台任务池...")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Printf("后台任务池已停止")
	case <-time.After(30 * time.Second):
		log.Printf("后台任务池停止超时，放弃等待")
	}
}

// Submit 提交任务。队列满时立即返回 ErrPoolOverloaded。
func (p *Pool) Submit(task *Task) error {
	if task.Run == nil {
		return ErrNilTask
	}
	if task.Timeout <= 0 {
		task.Timeout = 30 * time.Second
	}
	if task.Name == "" {
		task.Name = "anonymous"
	}

	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	default:
	}

	select {
	case p.queue <- task:
		atomic.AddInt64(&p.submitted, 1)
		return nil
	default:
		atomic.AddInt64(&p.rejected, 1)
		return ErrPoolOverloaded
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case task := <-p.queue:
			p.execute(task)
		case <-p.ctx.Done():
			// 退出前把队列里剩余的任务跑完
			for {
				select {
				case task := <-p.queue:
					p.execute(task)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) execute(task *Task) {
	atomic.AddInt64(&p.inFlight, 1)
	defer atomic.AddInt64(&p.inFlight, -1)

	var err error
	for attempt := 0; attempt <= task.Retries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Second)
		}
		err = p.runOnce(task)
		if err == nil {
			break
		}
	}

	if err != nil {
		atomic.AddInt64(&p.failed, 1)
		log.Printf("后台任务失败 [%s]: %v", task.Name, err)
	} else {
		atomic.AddInt64(&p.succeeded, 1)
	}
}

// runOnce 单次执行，带超时和panic保护
func (p *Pool) runOnce(task *Task) error {
	ctx, cancel := context.WithTimeout(context.Background(), task.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- &TaskPanicError{Task: task.Name, Panic: r}
			}
		}()
		done <- task.Run()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("任务 [%s] 超时: %w", task.Name, ctx.Err())
	}
}

// GetStats 获取统计信息
func (p *Pool) GetStats() map[string]int64 {
	return map[string]int64{
		"submitted_tasks": atomic.LoadInt64(&p.submitted),
		"succeeded_tasks": atomic.LoadInt64(&p.succeeded),
		"failed_tasks":    atomic.LoadInt64(&p.failed),
		"rejected_tasks":  atomic.LoadInt64(&p.rejected),
		"in_flight_tasks": atomic.LoadInt64(&p.inFlight),
		"queued_tasks":    int64(len(p.queue)),
		"worker_count":    int64(p.workers),
	}
}

// 错误定义
var (
	ErrPoolOverloaded = &PoolError{Message: "后台任务池已满"}
	ErrNilTask        = &PoolError{Message: "任务函数为空"}
)

type PoolError struct {
	Message string
}

func (e *PoolError) Error() string {
	return e.Message
}

type TaskPanicError struct {
	Task  string
	Panic interface{}
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("任务 [%s] panic: %v", e.Task, e.Panic)
}

// 便捷函数

// SubmitNamed 提交带名字的任务到全局池，名字用于失败日志和统计
func SubmitNamed(name string, fn func() error) error {
	return GetPool().Submit(&Task{Name: name, Run: fn})
}

// Stop 停止全局池
func Stop() {
	GetPool().Stop()
}

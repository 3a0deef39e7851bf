package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/dormitory-dev/duty-roster/backend/internal/config"
	"github.com/dormitory-dev/duty-roster/backend/internal/domain"
)

func main() {
	/**********************************************
	 * Создаём logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * Загружаем конфигурацию
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("не удалось загрузить конфигурацию", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * Создаём почтовый клиент
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("не удалось создать почтовый клиент", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// Проверяем, что почтовый сервер доступен
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("не удалось подключиться к почтовому серверу", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * Подключаемся к RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("не удалось подключиться к RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// Открываем канал
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("не удалось открыть канал", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// Объявляем очередь
	q, err := ch.QueueDeclare(
		"report_notifications", // имя очереди
		true,                   // персистентная
		false,                  // не удалять без потребителей
		false,                  // не эксклюзивная
		false,                  // дождаться подтверждения от RabbitMQ
		nil,                    // дополнительные параметры
	)
	if err != nil {
		logger.Error("не удалось объявить очередь", slog.String("error", err.Error()))
		return
	}

	// Слушаем CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Потребляем сообщения
	msgs, err := ch.Consume(
		q.Name, // очередь
		"",     // идентификатор потребителя назначит RabbitMQ
		false,  // без автоподтверждения
		false,  // не эксклюзивно
		false,  // no-local не поддерживается RabbitMQ
		false,  // дождаться ответа RabbitMQ
		nil,    // дополнительные параметры
	)
	if err != nil {
		logger.Error("не удалось начать потребление сообщений", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("получено сообщение", slog.String("message", string(msg.Body)))

				notification := domain.ReportNotification{}
				if err := json.Unmarshal(msg.Body, &notification); err != nil {
					logger.Error("не удалось разобрать уведомление", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				// Собираем письмо
				m := mail.NewMsg()
				if err := m.From(cfg.Email.SMTP.Username); err != nil {
					logger.Error("не удалось установить отправителя", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.To(cfg.Email.AdminAddress); err != nil {
					logger.Error("не удалось установить получателя", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				m.Subject(fmt.Sprintf("Отчёт о дежурстве за %s", notification.DutyDate))
				m.SetBodyString(mail.TypeTextPlain, notificationBody(notification))

				if err := client.DialAndSendWithContext(ctx, m); err != nil {
					logger.Error("не удалось отправить письмо", slog.String("error", err.Error()))
					_ = msg.Nack(false, true)
					continue
				}

				logger.Info("письмо отправлено", slog.String("dutyDate", notification.DutyDate.String()))
				_ = msg.Ack(false)
			}
		}
	}()

	<-sigChan
	logger.Info("останавливаем обработчик уведомлений...")
	cancel()
	wg.Wait()
	logger.Info("обработчик уведомлений остановлен")
}

func notificationBody(n domain.ReportNotification) string {
	var b strings.Builder

	status := "не выполнено"
	if n.IsDone {
		status = "выполнено"
	}

	fmt.Fprintf(&b, "Дата дежурства: %s\n", n.DutyDate)
	fmt.Fprintf(&b, "Этаж: %d\n", n.Floor)
	fmt.Fprintf(&b, "Назначенные комнаты: %v\n", n.Rooms)
	if n.ReportRoomNumber != nil {
		fmt.Fprintf(&b, "Отчёт отправила комната: %d\n", *n.ReportRoomNumber)
	}
	fmt.Fprintf(&b, "Статус: %s\n", status)
	if n.PhotoURL != nil {
		fmt.Fprintf(&b, "Фотоотчёт: %s\n", *n.PhotoURL)
	}

	return b.String()
}

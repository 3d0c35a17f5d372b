package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/pkg/apperror"
)

// formFlags хранит поля формы генерации, общие для generate, preview и save.
type formFlags struct {
	clientName  string
	projectType string
	companyName string
	template    string
	title       string
	content     string
	budget      float64
	fromDraft   bool
}

func (f *formFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.clientName, "client", "", "Имя клиента")
	cmd.Flags().StringVar(&f.projectType, "project", "", "Тип проекта")
	cmd.Flags().StringVar(&f.companyName, "company", "", "Название компании (по умолчанию из settings)")
	cmd.Flags().StringVar(&f.template, "template", "", "Шаблон предложения")
	cmd.Flags().StringVar(&f.title, "title", "", "Заголовок")
	cmd.Flags().StringVar(&f.content, "content", "", "Дополнительное описание")
	cmd.Flags().Float64Var(&f.budget, "budget", 0, "Бюджет проекта")
	cmd.Flags().BoolVar(&f.fromDraft, "from-draft", false, "Взять форму из черновика")
}

// request собирает форму; название компании берётся из настроек, если не задано.
func (f *formFlags) request(cmd *cobra.Command, a *app) (models.GenerateProposalRequest, error) {
	ctx := cmd.Context()

	if f.fromDraft {
		draft, err := a.proposals.Draft(ctx)
		if err != nil {
			return models.GenerateProposalRequest{}, err
		}
		if draft == nil {
			return models.GenerateProposalRequest{}, fmt.Errorf("черновик не найден")
		}
		return draft.Request, nil
	}

	req := models.GenerateProposalRequest{
		ClientName:  f.clientName,
		ProjectType: f.projectType,
		CompanyName: f.companyName,
		Template:    f.template,
		Title:       f.title,
		Content:     f.content,
	}
	if cmd.Flags().Changed("budget") {
		budget := f.budget
		req.ProjectBudget = &budget
	}

	if req.CompanyName == "" {
		settings, err := a.settings.Load(ctx)
		if err != nil {
			return req, err
		}
		if settings != nil {
			req.CompanyName = settings.CompanyName
		}
	}
	return req, nil
}

func loginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Войти в аккаунт",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Вход выполнен: %s (план %s)\n", user.Email, planName(user))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&password, "password", "", "Пароль")
	return cmd
}

func signupCmd(a *app) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Зарегистрироваться",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.auth.Signup(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Аккаунт создан: %s (план %s)\n", user.Email, planName(user))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Имя")
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&password, "password", "", "Пароль (не короче 6 символов)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Выйти и очистить локальные предложения",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Сессия завершена")
			return nil
		},
	}
}

func meCmd(a *app) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Показать профиль",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}

			var (
				user *models.User
				err  error
			)
			if !offline {
				user, err = a.auth.RefreshUser(ctx)
				if err != nil && !apperror.IsNetworkClass(err) {
					return err
				}
			}
			if user == nil {
				// Бэкенд недоступен: показываем сохранённый профиль.
				if user, err = a.auth.CurrentUser(ctx); err != nil {
					return err
				}
			}
			if user == nil {
				return errNotLoggedIn
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Email: %s\n", user.Email)
			if user.Name != "" {
				fmt.Fprintf(w, "Имя:   %s\n", user.Name)
			}
			fmt.Fprintf(w, "План:  %s\n", planName(user))
			if user.ProposalsCount != nil && user.ProposalsLimit != nil {
				fmt.Fprintf(w, "Предложений: %d из %d\n", *user.ProposalsCount, *user.ProposalsLimit)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Не обращаться к бэкенду")
	return cmd
}

func generateCmd(a *app) *cobra.Command {
	var (
		form   formFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Сгенерировать предложение и сохранить его локально",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := form.request(cmd, a)
			if err != nil {
				return err
			}

			p, err := a.proposals.Generate(cmd.Context(), req)
			if err != nil {
				if apperror.IsNetworkClass(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Форма сохранена как черновик: proposely generate --from-draft")
				}
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			printProposal(cmd.OutOrStdout(), p.ID, p.GenerateProposalResponse)
			return nil
		},
	}
	form.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Вывести результат в JSON")
	return cmd
}

func previewCmd(a *app) *cobra.Command {
	var form formFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Предпросмотр предложения без сохранения",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := form.request(cmd, a)
			if err != nil {
				return err
			}
			resp, err := a.proposals.Preview(cmd.Context(), req)
			if err != nil {
				return err
			}
			printProposal(cmd.OutOrStdout(), resp.ID, *resp)
			return nil
		},
	}
	form.bind(cmd)
	return cmd
}

func saveCmd(a *app) *cobra.Command {
	var (
		form        formFlags
		generatePDF bool
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Сохранить предложение в аккаунте",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			req, err := form.request(cmd, a)
			if err != nil {
				return err
			}
			saved, err := a.proposals.SaveRemote(cmd.Context(), req, generatePDF)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Сохранено: %s\n", saved.ID)
			if saved.PDFURL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "PDF: %s\n", saved.PDFURL)
			}
			return nil
		},
	}
	form.bind(cmd)
	cmd.Flags().BoolVar(&generatePDF, "pdf", false, "Сгенерировать PDF на сервере")
	return cmd
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Локальные предложения",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := a.store.List()
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Предложений пока нет")
				return nil
			}

			current, _ := a.store.Current()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tКЛИЕНТ\tПРОЕКТ\tСУММА\tСОЗДАНО")
			for _, p := range list {
				mark := ""
				if p.ID == current.ID {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\n",
					mark, p.ID, p.ClientName, p.ProjectType, p.Total, p.CreatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
}

func remoteListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remote-list",
		Short: "Предложения, сохранённые в аккаунте",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			list, err := a.proposals.ListRemote(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "В аккаунте нет сохранённых предложений")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tЗАГОЛОВОК\tКЛИЕНТ\tСОЗДАНО\tPDF")
			for _, p := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.ClientName, p.CreatedAt, p.PDFURL)
			}
			return tw.Flush()
		},
	}
}

func remoteDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remote-delete <id>",
		Short: "Удалить предложение из аккаунта",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			if err := a.proposals.DeleteRemote(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Удалено: %s\n", args[0])
			return nil
		},
	}
}

func showCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Показать предложение (по умолчанию текущее)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.lookup(args)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			printProposal(cmd.OutOrStdout(), p.ID, p.GenerateProposalResponse)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Вывести в JSON")
	return cmd
}

func useCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Сделать предложение текущим",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.SetCurrent(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Текущее предложение: %s\n", args[0])
			return nil
		},
	}
}

func downloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "download [id]",
		Short: "Скачать PDF предложения (по умолчанию текущего)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.lookup(args)
			if err != nil {
				return err
			}
			path, size, err := a.proposals.DownloadPDF(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "PDF сохранён: %s (%d байт)\n", path, size)
			return nil
		},
	}
}

func clearCmd(a *app) *cobra.Command {
	var draft bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Удалить все локальные предложения",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(cmd.Context()); err != nil {
				return err
			}
			if draft {
				if err := a.proposals.DiscardDraft(cmd.Context()); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Локальные предложения удалены")
			return nil
		},
	}
	cmd.Flags().BoolVar(&draft, "draft", false, "Удалить и черновик формы")
	return cmd
}

func settingsCmd(a *app) *cobra.Command {
	var s models.CompanySettings
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Показать или изменить реквизиты компании",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if !anyChanged(cmd, "company-name", "company-email", "company-phone", "company-address") {
				current, err := a.settings.Load(ctx)
				if err != nil {
					return err
				}
				if current == nil {
					fmt.Fprintln(w, "Настройки не заданы")
					return nil
				}
				return printJSON(w, current)
			}

			// Незаданные флаги сохраняют прежние значения.
			current, err := a.settings.Load(ctx)
			if err != nil {
				return err
			}
			var merged models.CompanySettings
			if current != nil {
				merged = *current
			}
			if cmd.Flags().Changed("company-name") {
				merged.CompanyName = s.CompanyName
			}
			if cmd.Flags().Changed("company-email") {
				merged.CompanyEmail = s.CompanyEmail
			}
			if cmd.Flags().Changed("company-phone") {
				merged.CompanyPhone = s.CompanyPhone
			}
			if cmd.Flags().Changed("company-address") {
				merged.CompanyAddress = s.CompanyAddress
			}

			if err := a.settings.Save(ctx, merged); err != nil {
				return err
			}
			fmt.Fprintln(w, "Настройки сохранены")
			return nil
		},
	}
	cmd.Flags().StringVar(&s.CompanyName, "company-name", "", "Название компании")
	cmd.Flags().StringVar(&s.CompanyEmail, "company-email", "", "Email компании")
	cmd.Flags().StringVar(&s.CompanyPhone, "company-phone", "", "Телефон")
	cmd.Flags().StringVar(&s.CompanyAddress, "company-address", "", "Адрес")
	return cmd
}

func healthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Проверить доступность бэкенда",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := a.client.Health(cmd.Context())
			if err != nil {
				return err
			}
			line := fmt.Sprintf("%s: %s", a.client.BaseURL(), status.Status)
			if status.Version != "" {
				line += " (" + status.Version + ")"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
}

// lookup возвращает предложение по ID из аргументов или текущее.
func (a *app) lookup(args []string) (models.Proposal, error) {
	if len(args) == 1 {
		p, ok := a.store.GetByID(args[0])
		if !ok {
			return models.Proposal{}, apperror.ErrProposalNotFound
		}
		return p, nil
	}
	p, ok := a.store.Current()
	if !ok {
		return models.Proposal{}, fmt.Errorf("текущее предложение не выбрано: proposely use <id>")
	}
	return p, nil
}

func printProposal(w io.Writer, id string, p models.GenerateProposalResponse) {
	if id != "" {
		fmt.Fprintf(w, "Предложение %s\n\n", id)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ЭТАП\tСРОК\tЦЕНА")
	for _, item := range p.PricingTable {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\n", item.Name, item.Duration, item.Price)
	}
	fmt.Fprintf(tw, "Итого\t\t%.2f\n", p.Total)
	_ = tw.Flush()

	fmt.Fprintf(w, "\nСопроводительное письмо:\n%s\n", strings.TrimSpace(p.CoverLetter))
	if p.ContractText != "" {
		fmt.Fprintf(w, "\nДоговор:\n%s\n", strings.TrimSpace(p.ContractText))
	}
	if p.ProposalPDFDownloadURL != "" {
		fmt.Fprintf(w, "\nPDF: %s\n", p.ProposalPDFDownloadURL)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func planName(u *models.User) string {
	if u.Plan == "" {
		return models.PlanFree
	}
	return u.Plan
}

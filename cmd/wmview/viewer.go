package main

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/banshee-data/wafermap/internal/monitoring"
	"github.com/banshee-data/wafermap/internal/render"
	"github.com/banshee-data/wafermap/internal/viewmodel"
)

const (
	windowWidth  = 1100
	windowHeight = 600
)

// viewer owns the window. Every field is touched from fyne callbacks only.
type viewer struct {
	window fyne.Window
	vm     *viewmodel.ViewModel
	logf   monitoring.Logf
	opts   render.WaferOptions

	masks []string
	maps  []string
	open  *viewmodel.MaskSummary
	sel   *viewmodel.Selection

	maskList     *widget.List
	mapList      *widget.List
	stats        *widget.Label
	waferImg     *canvas.Image
	linearImg    *canvas.Image
	equalAreaImg *canvas.Image

	menu        *fyne.MainMenu
	crossItem   *fyne.MenuItem
	outlineItem *fyne.MenuItem
	legendItem  *fyne.MenuItem
}

func newViewer(a fyne.App, vm *viewmodel.ViewModel, logf monitoring.Logf) *viewer {
	v := &viewer{
		window: a.NewWindow("OWT Wafer Map"),
		vm:     vm,
		logf:   logf.OrDiscard(),
		opts:   render.DefaultWaferOptions(),
	}

	v.maskList = widget.NewList(
		func() int { return len(v.masks) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(v.masks[id]) },
	)
	v.maskList.OnSelected = func(id widget.ListItemID) { v.openMask(v.masks[id]) }

	v.mapList = widget.NewList(
		func() int { return len(v.maps) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(v.maps[id]) },
	)
	v.mapList.OnSelected = func(id widget.ListItemID) { v.selectMap(v.maps[id]) }

	v.stats = widget.NewLabel("Select a mask")
	v.waferImg = newPlotImage(420, 420)
	v.linearImg = newPlotImage(360, 200)
	v.equalAreaImg = newPlotImage(360, 200)

	lists := container.NewVSplit(
		container.NewBorder(widget.NewLabel("Masks"), nil, nil, nil, v.maskList),
		container.NewBorder(widget.NewLabel("Maps"), nil, nil, nil, v.mapList),
	)
	hists := container.NewGridWithRows(2, v.linearImg, v.equalAreaImg)
	plots := container.NewBorder(nil, nil, nil, hists, v.waferImg)
	body := container.NewBorder(nil, v.stats, nil, nil, plots)

	split := container.NewHSplit(lists, body)
	split.Offset = 0.2

	v.buildMenus()
	v.window.SetContent(split)
	v.window.Resize(fyne.NewSize(windowWidth, windowHeight))
	return v
}

func newPlotImage(w, h float32) *canvas.Image {
	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(w, h))
	return img
}

func (v *viewer) buildMenus() {
	v.crossItem = fyne.NewMenuItem("Crosshairs", func() { v.toggle(&v.opts.Crosshairs) })
	v.outlineItem = fyne.NewMenuItem("Wafer Outline", func() { v.toggle(&v.opts.Outline) })
	v.legendItem = fyne.NewMenuItem("Legend", func() { v.toggle(&v.opts.Legend) })
	v.syncChecks()

	file := fyne.NewMenu("File",
		fyne.NewMenuItem("Reload Masks", v.loadMasks),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Close", func() { v.window.Close() }),
	)
	view := fyne.NewMenu("View",
		fyne.NewMenuItem("Redraw", v.redraw),
		fyne.NewMenuItem("Die Color...", v.pickDieColor),
		fyne.NewMenuItemSeparator(),
		v.crossItem,
		v.outlineItem,
		v.legendItem,
	)
	v.menu = fyne.NewMainMenu(file, view)
	v.window.SetMainMenu(v.menu)
}

func (v *viewer) syncChecks() {
	v.crossItem.Checked = v.opts.Crosshairs
	v.outlineItem.Checked = v.opts.Outline
	v.legendItem.Checked = v.opts.Legend
}

func (v *viewer) toggle(flag *bool) {
	*flag = !*flag
	v.syncChecks()
	if v.menu != nil {
		v.menu.Refresh()
	}
	v.redraw()
}

func (v *viewer) pickDieColor() {
	picker := dialog.NewColorPicker("Die Color", "Choose the color dies are drawn in", v.setDieColor, v.window)
	picker.Advanced = true
	picker.Show()
}

func (v *viewer) setDieColor(c color.Color) {
	v.opts.DieColor = c
	v.redraw()
}

func (v *viewer) showError(err error) {
	v.logf("%v", err)
	dialog.ShowError(err, v.window)
}

func (v *viewer) loadMasks() {
	names, err := v.vm.MaskNames()
	if err != nil {
		v.showError(err)
		return
	}
	v.masks = names
	v.maskList.UnselectAll()
	v.maskList.Refresh()
}

// openMask reloads the mask and lists its maps. On error the previous
// display is left as it was.
func (v *viewer) openMask(name string) {
	s, err := v.vm.Open(name)
	if err != nil {
		v.showError(err)
		return
	}
	v.open = s
	v.sel = nil
	v.maps = s.Maps
	v.mapList.UnselectAll()
	v.mapList.Refresh()
	v.stats.SetText(v.statsText())
	v.window.SetTitle("OWT Wafer Map: " + s.Name)
}

func (v *viewer) selectMap(name string) {
	if v.open == nil {
		return
	}
	sel, err := v.vm.Select(v.open.Name, name)
	if err != nil {
		v.showError(err)
		return
	}
	v.sel = sel
	v.stats.SetText(v.statsText())
	v.redraw()
}

// redraw re-renders the plots of the current selection.
func (v *viewer) redraw() {
	if v.sel == nil {
		return
	}
	waferPlot, hists, err := render.Plots(v.sel, v.opts)
	if err != nil {
		v.showError(err)
		return
	}
	setImage(v.waferImg, render.Image(waferPlot, render.WaferSize, render.WaferSize))
	setImage(v.linearImg, render.Image(hists[0], render.HistogramWidth, render.HistogramHeight))
	setImage(v.equalAreaImg, render.Image(hists[1], render.HistogramWidth, render.HistogramHeight))
}

func setImage(c *canvas.Image, img image.Image) {
	c.Image = img
	c.Refresh()
}

func (v *viewer) statsText() string {
	if v.open == nil {
		return ""
	}
	s := v.open
	var b strings.Builder
	fmt.Fprintf(&b, "%s  |  %d mm wafer  |  die %g x %g mm  |  centre row %d col %d  |  devices: %s",
		s.Name, s.Size.Diameter, s.Info.DieX, s.Info.DieY,
		s.Geometry.Center.Y, s.Geometry.Center.X, strings.Join(s.Devices, ", "))
	if sel := v.sel; sel != nil {
		st := sel.Stats
		fmt.Fprintf(&b, "\n%s: %d die  |  radius %.1f-%.1f mm, mean %.1f mm", sel.Map, sel.DieCount, st.Min, st.Max, st.Mean)
		for _, q := range st.Quantiles {
			fmt.Fprintf(&b, ", p%.0f %.1f", q.P*100, q.Value)
		}
	}
	return b.String()
}

